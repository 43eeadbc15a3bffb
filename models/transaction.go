package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a financial document. It is created as a draft, carries its
// line items, and becomes immutable (except narration and reference) once
// posted to the ledger.
type Transaction struct {
	ID              int             `gorm:"primary_key" json:"id"`
	EntityId        string          `gorm:"index;not null" json:"entity_id"`
	TransactionType TransactionType `gorm:"index;size:2;not null" json:"transaction_type"`
	TransactionNo   string          `gorm:"index;size:20;not null" json:"transaction_no"`
	SequenceNo      int64           `gorm:"not null" json:"sequence_no"`
	Reference       string          `gorm:"size:100" json:"reference"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transaction_date"`
	AccountId       int             `gorm:"index;not null" json:"account_id"`
	CurrencyId      int             `gorm:"index" json:"currency_id"`
	ExchangeRate    decimal.Decimal `gorm:"type:decimal(20,4);default:1" json:"exchange_rate"`
	Credited        *bool           `gorm:"not null;default:false" json:"credited"`
	Narration       string          `gorm:"size:500" json:"narration"`
	IsPosted        *bool           `gorm:"not null;default:false" json:"is_posted"`
	IsReversal      *bool           `gorm:"not null;default:false" json:"is_reversal"`
	ReversesId      *int            `gorm:"index" json:"reverses_id"`
	ReversedById    *int            `gorm:"index" json:"reversed_by_id"`
	LineItems       []LineItem      `json:"line_items"`
	Ledgers         []Ledger        `json:"ledgers"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t Transaction) GetEntityId() string {
	return t.EntityId
}

type NewTransaction struct {
	TransactionType TransactionType `json:"transaction_type" validate:"required"`
	TransactionDate time.Time       `json:"transaction_date" validate:"required"`
	AccountId       int             `json:"account_id" validate:"required"`
	CurrencyId      int             `json:"currency_id"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	Reference       string          `json:"reference"`
	Narration       string          `json:"narration"`
	Credited        *bool           `json:"credited"`
	LineItems       []*NewLineItem  `json:"line_items"`
}

// ClearableDocument accumulates outstanding exposure that assignments reduce.
// Transactions and opening balances both satisfy it; amounts are in the
// entity's functional currency.
type ClearableDocument interface {
	OriginalAmount() decimal.Decimal
	ClearedAmount(ctx context.Context) (decimal.Decimal, error)
}

func (input *NewTransaction) validate(ctx context.Context, entityId string) (*Account, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if _, err := ParseTransactionType(string(input.TransactionType)); err != nil {
		return nil, err
	}
	account, err := GetAccount(ctx, input.AccountId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, MissingAccountError{Operation: string(input.TransactionType) + " transaction"}
		}
		return nil, err
	}
	if err := validateMainAccount(input.TransactionType, account.AccountType); err != nil {
		return nil, err
	}
	if input.ExchangeRate.IsNegative() {
		return nil, ErrNegativeAmount
	}
	for _, item := range input.LineItems {
		if err := utils.ValidateStruct(item); err != nil {
			return nil, err
		}
		if item.Amount.IsNegative() || item.Quantity.IsNegative() {
			return nil, ErrNegativeAmount
		}
	}
	return account, nil
}

// CreateTransaction records a draft document. The transaction number is the
// type code followed by the entity's next sequence, the exchange rate falls
// back to the rate valid on the transaction date, and each line item snapshots
// its vat rate so later rate changes never reprice the document.
func CreateTransaction(ctx context.Context, input *NewTransaction) (*Transaction, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	account, err := input.validate(ctx, entityId)
	if err != nil {
		return nil, err
	}

	currencyId := input.CurrencyId
	if currencyId == 0 {
		currencyId = account.CurrencyId
	}
	rate := input.ExchangeRate
	if rate.IsZero() {
		if currencyId > 0 {
			exchangeRate, err := RateAsOf(ctx, currencyId, input.TransactionDate)
			if err != nil {
				return nil, err
			}
			rate = exchangeRate.Rate
		} else {
			rate = decimal.NewFromInt(1)
		}
	}

	credited := input.Credited
	if credited == nil {
		c := defaultCredited(input.TransactionType)
		credited = &c
	}

	sequenceNo, err := utils.GetSequence[Transaction](ctx, entityId, "transaction_type", string(input.TransactionType))
	if err != nil {
		return nil, err
	}

	transaction := Transaction{
		EntityId:        entityId,
		TransactionType: input.TransactionType,
		TransactionNo:   fmt.Sprintf("%s%05d", input.TransactionType, sequenceNo),
		SequenceNo:      sequenceNo,
		Reference:       input.Reference,
		TransactionDate: input.TransactionDate,
		AccountId:       account.ID,
		CurrencyId:      currencyId,
		ExchangeRate:    rate,
		Credited:        credited,
		Narration:       input.Narration,
		IsPosted:        newFalse(),
		IsReversal:      newFalse(),
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return nil, err
	}

	if err := tx.Create(&transaction).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	lineItems, err := buildLineItems(ctx, entityId, transaction.ID, input.LineItems)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(lineItems) > 0 {
		if err := tx.Create(&lineItems).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	transaction.LineItems = lineItems
	return &transaction, nil
}

func buildLineItems(ctx context.Context, entityId string, transactionId int, inputs []*NewLineItem) ([]LineItem, error) {
	lineItems := make([]LineItem, 0, len(inputs))
	for _, item := range inputs {
		if err := utils.ValidateResourceId[Account](ctx, entityId, item.AccountId); err != nil {
			return nil, err
		}
		quantity := item.Quantity
		if quantity.IsZero() {
			quantity = decimal.NewFromInt(1)
		}
		vatRate := decimal.Zero
		if item.VatId > 0 {
			vat, err := GetVat(ctx, item.VatId)
			if err != nil {
				return nil, err
			}
			vatRate = vat.Rate
		}
		credited := item.Credited
		lineItems = append(lineItems, LineItem{
			EntityId:      entityId,
			TransactionId: transactionId,
			AccountId:     item.AccountId,
			VatId:         item.VatId,
			Narration:     item.Narration,
			Quantity:      quantity,
			Amount:        item.Amount,
			VatRate:       vatRate,
			Credited:      &credited,
		})
	}
	return lineItems, nil
}

// UpdateTransaction replaces a draft's header and line items. Once posted,
// only narration and reference may change.
func UpdateTransaction(ctx context.Context, id int, input *NewTransaction) (*Transaction, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	transaction, err := utils.FetchModel[Transaction](ctx, entityId, id, "LineItems")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()

	if transaction.isPosted() {
		// Zero valued fields mean unchanged; anything else is a rejected edit.
		if (input.TransactionType != "" && input.TransactionType != transaction.TransactionType) ||
			(input.AccountId != 0 && input.AccountId != transaction.AccountId) ||
			(!input.TransactionDate.IsZero() && !input.TransactionDate.Equal(transaction.TransactionDate)) ||
			len(input.LineItems) > 0 {
			return nil, ErrPostedTransaction
		}
		err = db.WithContext(ctx).Model(transaction).Updates(map[string]interface{}{
			"Narration": input.Narration,
			"Reference": input.Reference,
		}).Error
		if err != nil {
			return nil, err
		}
		return transaction, nil
	}

	account, err := input.validate(ctx, entityId)
	if err != nil {
		return nil, err
	}
	rate := input.ExchangeRate
	if rate.IsZero() {
		rate = transaction.ExchangeRate
	}
	credited := input.Credited
	if credited == nil {
		credited = transaction.Credited
	}

	tx := db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return nil, err
	}
	err = tx.Model(transaction).Updates(map[string]interface{}{
		"TransactionType": input.TransactionType,
		"TransactionDate": input.TransactionDate,
		"AccountId":       account.ID,
		"CurrencyId":      input.CurrencyId,
		"ExchangeRate":    rate,
		"Credited":        credited,
		"Narration":       input.Narration,
		"Reference":       input.Reference,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&LineItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	lineItems, err := buildLineItems(ctx, entityId, transaction.ID, input.LineItems)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(lineItems) > 0 {
		if err := tx.Create(&lineItems).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	transaction.LineItems = lineItems
	return transaction, nil
}

// DeleteTransaction recycles a draft. Posted transactions are never deleted;
// reverse them instead.
func DeleteTransaction(ctx context.Context, id int) (*Transaction, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	transaction, err := utils.FetchModel[Transaction](ctx, entityId, id)
	if err != nil {
		return nil, err
	}
	if transaction.isPosted() {
		return nil, ErrPostedTransaction
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return nil, err
	}
	if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&LineItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Delete(transaction).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return transaction, nil
}

func GetTransaction(ctx context.Context, id int) (*Transaction, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}
	return utils.FetchModel[Transaction](ctx, entityId, id, "LineItems", "Ledgers")
}

func GetTransactions(ctx context.Context, transactionType *TransactionType, accountId *int, from *time.Time, to *time.Time) ([]*Transaction, error) {

	db := config.GetDB()
	var results []*Transaction

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId).Preload("LineItems")
	if transactionType != nil {
		dbCtx = dbCtx.Where("transaction_type = ?", *transactionType)
	}
	if accountId != nil && *accountId > 0 {
		dbCtx = dbCtx.Where("account_id = ?", *accountId)
	}
	if from != nil {
		dbCtx = dbCtx.Where("transaction_date >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("transaction_date <= ?", *to)
	}
	err := dbCtx.Order("transaction_date, id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (t *Transaction) isPosted() bool {
	return t.IsPosted != nil && *t.IsPosted
}

func (t *Transaction) isCredited() bool {
	return t.Credited != nil && *t.Credited
}

// Amount is the document total in the transaction's currency, vat inclusive.
// Line items must be loaded.
func (t *Transaction) Amount() decimal.Decimal {
	total := decimal.Zero
	for i := range t.LineItems {
		total = total.Add(t.LineItems[i].TotalAmount())
	}
	return total
}

// OriginalAmount is the document total in the entity's functional currency.
func (t *Transaction) OriginalAmount() decimal.Decimal {
	return t.Amount().Div(t.ExchangeRate).Round(moneyPrecision)
}

// ClearedAmount is the functional-currency total assigned against this
// transaction so far.
func (t *Transaction) ClearedAmount(ctx context.Context) (decimal.Decimal, error) {
	return ClearedAmountFor(ctx, clearedTypeTransaction, t.ID)
}

// UnclearedAmount is the outstanding remainder still open for assignment.
func (t *Transaction) UnclearedAmount(ctx context.Context) (decimal.Decimal, error) {
	cleared, err := t.ClearedAmount(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return t.OriginalAmount().Sub(cleared), nil
}

// ReverseTransaction posts an offsetting copy of a posted transaction: same
// accounts and amounts with every entry side flipped. The two documents link
// to each other and a transaction reverses at most once.
func ReverseTransaction(ctx context.Context, id int, reversalDate time.Time) (*Transaction, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	original, err := utils.FetchModel[Transaction](ctx, entityId, id, "LineItems")
	if err != nil {
		return nil, err
	}
	if !original.isPosted() {
		return nil, ErrUnpostedTransaction
	}
	if original.ReversedById != nil {
		return nil, errors.New("transaction is already reversed")
	}

	flipped := !original.isCredited()
	input := &NewTransaction{
		TransactionType: original.TransactionType,
		TransactionDate: reversalDate,
		AccountId:       original.AccountId,
		CurrencyId:      original.CurrencyId,
		ExchangeRate:    original.ExchangeRate,
		Reference:       original.TransactionNo,
		Narration:       "Reversal of " + original.TransactionNo,
		Credited:        &flipped,
	}
	for i := range original.LineItems {
		item := &original.LineItems[i]
		input.LineItems = append(input.LineItems, &NewLineItem{
			AccountId: item.AccountId,
			VatId:     item.VatId,
			Narration: item.Narration,
			Quantity:  item.Quantity,
			Amount:    item.Amount,
			Credited:  !item.isCredited(),
		})
	}

	reversal, err := CreateTransaction(ctx, input)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(reversal).Updates(map[string]interface{}{
		"IsReversal": newTrue(),
		"ReversesId": original.ID,
	}).Error
	if err != nil {
		return nil, err
	}

	if err := PostTransaction(ctx, reversal.ID); err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(original).
		Update("ReversedById", reversal.ID).Error
	if err != nil {
		return nil, err
	}

	return GetTransaction(ctx, reversal.ID)
}
