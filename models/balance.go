package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// Balance is an account's opening balance for a reporting year, brought
// forward from outside the ledger. Opening balances on receivable and payable
// accounts stay clearable, so migrated invoices can still be settled.
type Balance struct {
	ID              int             `gorm:"primary_key" json:"id"`
	EntityId        string          `gorm:"index;not null" json:"entity_id"`
	AccountId       int             `gorm:"index;not null" json:"account_id"`
	CurrencyId      int             `gorm:"index" json:"currency_id"`
	Year            int             `gorm:"index;not null" json:"year"`
	TransactionNo   string          `gorm:"size:50" json:"transaction_no"`
	TransactionDate time.Time       `gorm:"not null" json:"transaction_date"`
	BalanceType     EntryType       `gorm:"size:1;not null" json:"balance_type"`
	ExchangeRate    decimal.Decimal `gorm:"type:decimal(20,4);default:1" json:"exchange_rate"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b Balance) GetEntityId() string {
	return b.EntityId
}

type NewBalance struct {
	AccountId       int             `json:"account_id" validate:"required"`
	CurrencyId      int             `json:"currency_id"`
	Year            int             `json:"year" validate:"required"`
	TransactionNo   string          `json:"transaction_no"`
	TransactionDate time.Time       `json:"transaction_date" validate:"required"`
	BalanceType     EntryType       `json:"balance_type" validate:"required"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
}

// CreateBalance records an opening balance. Income statement accounts report
// activity, not position, so they can never carry one.
func CreateBalance(ctx context.Context, input *NewBalance) (*Balance, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if _, err := ParseEntryType(string(input.BalanceType)); err != nil {
		return nil, err
	}
	if input.Amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	account, err := GetAccount(ctx, input.AccountId)
	if err != nil {
		return nil, err
	}
	if account.AccountType.IsIncomeStatement() {
		return nil, ErrInvalidAccountClassBalance
	}

	rate := input.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}

	balance := Balance{
		EntityId:        entityId,
		AccountId:       account.ID,
		CurrencyId:      input.CurrencyId,
		Year:            input.Year,
		TransactionNo:   input.TransactionNo,
		TransactionDate: input.TransactionDate,
		BalanceType:     input.BalanceType,
		ExchangeRate:    rate,
		Amount:          input.Amount,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

func GetBalance(ctx context.Context, id int) (*Balance, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}
	return utils.FetchModel[Balance](ctx, entityId, id)
}

func GetBalances(ctx context.Context, accountId *int, year *int) ([]*Balance, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	if accountId != nil && *accountId > 0 {
		dbCtx = dbCtx.Where("account_id = ?", *accountId)
	}
	if year != nil && *year > 0 {
		dbCtx = dbCtx.Where("year = ?", *year)
	}

	var results []*Balance
	if err := dbCtx.Order("transaction_date, id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// OriginalAmount is the balance in functional currency.
func (b *Balance) OriginalAmount() decimal.Decimal {
	return b.Amount.Div(b.ExchangeRate).Round(moneyPrecision)
}

// ClearedAmount is the functional-currency total assigned against this
// opening balance so far.
func (b *Balance) ClearedAmount(ctx context.Context) (decimal.Decimal, error) {
	return ClearedAmountFor(ctx, clearedTypeBalance, b.ID)
}

// UnclearedAmount is the remainder still open for assignment.
func (b *Balance) UnclearedAmount(ctx context.Context) (decimal.Decimal, error) {
	cleared, err := b.ClearedAmount(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return b.OriginalAmount().Sub(cleared), nil
}
