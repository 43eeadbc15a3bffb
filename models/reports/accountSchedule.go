package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// ScheduleItem is one outstanding document on an account schedule.
type ScheduleItem struct {
	Id              int             `json:"id"`
	TransactionNo   string          `json:"transaction_no"`
	TransactionType string          `json:"transaction_type"`
	TypeLabel       string          `json:"type_label"`
	TransactionDate time.Time       `json:"transaction_date"`
	DueDays         int             `json:"due_days"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	ClearedAmount   decimal.Decimal `json:"cleared_amount"`
	UnclearedAmount decimal.Decimal `json:"uncleared_amount"`
}

// AccountSchedule itemizes the uncleared documents of a receivable or payable
// account as at a date, with accumulated totals.
type AccountSchedule struct {
	AccountId            int             `json:"account_id"`
	AccountName          string          `json:"account_name"`
	EndDate              time.Time       `json:"end_date"`
	Items                []*ScheduleItem `json:"items"`
	TotalOriginalAmount  decimal.Decimal `json:"total_original_amount"`
	TotalClearedAmount   decimal.Decimal `json:"total_cleared_amount"`
	TotalUnclearedAmount decimal.Decimal `json:"total_uncleared_amount"`
}

var scheduleAccountTypes = []models.AccountType{
	models.AccountTypeReceivable,
	models.AccountTypePayable,
}

// GetAccountSchedule builds the aging schedule for one account. Candidates
// are the year's opening balances plus every posted clearable transaction on
// the account up to the end date, with journal entries filtered by the
// schedule parity rule. Fully cleared documents drop out. A non-zero
// currencyId keeps only documents in that currency.
func GetAccountSchedule(ctx context.Context, accountId int, currencyId int, endDate time.Time) (*AccountSchedule, error) {

	if accountId == 0 {
		return nil, models.MissingAccountError{Operation: "Account Schedule"}
	}

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, models.ErrEntityRequired
	}

	account, err := models.GetAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}
	if account.AccountType != models.AccountTypeReceivable && account.AccountType != models.AccountTypePayable {
		return nil, models.InvalidAccountTypeError{Allowed: scheduleAccountTypes}
	}

	cfg := config.GetIFRS()
	year := models.YearOf(endDate, cfg)

	schedule := &AccountSchedule{
		AccountId:   account.ID,
		AccountName: account.Name,
		EndDate:     endDate,
		Items:       []*ScheduleItem{},
	}

	balances, err := models.GetBalances(ctx, &accountId, &year)
	if err != nil {
		return nil, err
	}
	for _, balance := range balances {
		if currencyId > 0 && balance.CurrencyId != currencyId {
			continue
		}
		item, err := scheduleBalanceItem(ctx, balance, endDate, cfg)
		if err != nil {
			return nil, err
		}
		appendScheduleItem(schedule, item)
	}

	db := config.GetDB()
	var transactions []*models.Transaction
	query := db.WithContext(ctx).
		Where("entity_id = ? AND account_id = ? AND is_posted = ? AND transaction_date <= ?",
			entityId, accountId, true, endDate).
		Where("transaction_type IN ?", toStrings(models.ClearableTransactionTypes))
	if currencyId > 0 {
		query = query.Where("currency_id = ?", currencyId)
	}
	err = query.
		Preload("LineItems").
		Order("transaction_date, id").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	for _, txn := range transactions {
		if !models.ScheduleEligible(account.AccountType, txn.TransactionType, txn.Credited != nil && *txn.Credited) {
			continue
		}
		item, err := scheduleTransactionItem(ctx, txn, endDate, cfg)
		if err != nil {
			return nil, err
		}
		appendScheduleItem(schedule, item)
	}

	return schedule, nil
}

func scheduleBalanceItem(ctx context.Context, balance *models.Balance, endDate time.Time, cfg *config.IFRSConfig) (*ScheduleItem, error) {
	cleared, err := balance.ClearedAmount(ctx)
	if err != nil {
		return nil, err
	}
	original := balance.OriginalAmount()
	return &ScheduleItem{
		Id:              balance.ID,
		TransactionNo:   balance.TransactionNo,
		TransactionType: "Opening Balance",
		TypeLabel:       "Opening Balance",
		TransactionDate: balance.TransactionDate,
		DueDays:         dueDays(balance.TransactionDate, endDate),
		OriginalAmount:  original,
		ClearedAmount:   cleared,
		UnclearedAmount: original.Sub(cleared),
	}, nil
}

func scheduleTransactionItem(ctx context.Context, txn *models.Transaction, endDate time.Time, cfg *config.IFRSConfig) (*ScheduleItem, error) {
	cleared, err := txn.ClearedAmount(ctx)
	if err != nil {
		return nil, err
	}
	original := txn.OriginalAmount()
	return &ScheduleItem{
		Id:              txn.ID,
		TransactionNo:   txn.TransactionNo,
		TransactionType: string(txn.TransactionType),
		TypeLabel:       cfg.TransactionLabels[string(txn.TransactionType)],
		TransactionDate: txn.TransactionDate,
		DueDays:         dueDays(txn.TransactionDate, endDate),
		OriginalAmount:  original,
		ClearedAmount:   cleared,
		UnclearedAmount: original.Sub(cleared),
	}, nil
}

// appendScheduleItem keeps only documents with an open remainder and rolls
// the accumulated totals forward.
func appendScheduleItem(schedule *AccountSchedule, item *ScheduleItem) {
	if !item.UnclearedAmount.IsPositive() {
		return
	}
	schedule.Items = append(schedule.Items, item)
	schedule.TotalOriginalAmount = schedule.TotalOriginalAmount.Add(item.OriginalAmount)
	schedule.TotalClearedAmount = schedule.TotalClearedAmount.Add(item.ClearedAmount)
	schedule.TotalUnclearedAmount = schedule.TotalUnclearedAmount.Add(item.UnclearedAmount)
}

func dueDays(from time.Time, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

func toStrings(types []models.TransactionType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}
