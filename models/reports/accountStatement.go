package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// StatementRow is one ledger movement on an account statement with the
// running balance after it.
type StatementRow struct {
	Id              int              `json:"id"`
	TransactionId   int              `json:"transaction_id"`
	TransactionNo   string           `json:"transaction_no"`
	TransactionType string           `json:"transaction_type"`
	TypeLabel       string           `json:"type_label"`
	PostDate        time.Time        `json:"post_date"`
	EntryType       models.EntryType `json:"entry_type"`
	Amount          decimal.Decimal  `json:"amount"`
	Balance         decimal.Decimal  `json:"balance"`
}

// AccountStatement is an account's movements over a window with opening and
// closing balances, functional currency, debit positive.
type AccountStatement struct {
	AccountId      int             `json:"account_id"`
	AccountName    string          `json:"account_name"`
	FromDate       time.Time       `json:"from_date"`
	ToDate         time.Time       `json:"to_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Rows           []*StatementRow `json:"rows"`
}

// GetAccountStatement lists an account's posted movements between fromDate
// and toDate in posting order. A zero fromDate defaults to the fiscal year
// start, a zero toDate to now. A non-zero currencyId keeps only movements
// posted in that currency.
func GetAccountStatement(ctx context.Context, accountId int, currencyId int, fromDate time.Time, toDate time.Time) (*AccountStatement, error) {

	if accountId == 0 {
		return nil, models.MissingAccountError{Operation: "Account Statement"}
	}

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, models.ErrEntityRequired
	}

	account, err := models.GetAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}

	cfg := config.GetIFRS()
	if toDate.IsZero() {
		toDate = time.Now().UTC()
	}
	if fromDate.IsZero() {
		fromDate = models.YearStart(models.YearOf(toDate, cfg), cfg)
	}

	// Balance carried into the window: the year's opening balance plus
	// movement from the fiscal year start up to the day before the window.
	opening, err := account.OpeningBalance(ctx, models.YearOf(fromDate, cfg))
	if err != nil {
		return nil, err
	}
	yearStart := models.YearStart(models.YearOf(fromDate, cfg), cfg)
	if fromDate.After(yearStart) {
		carried, err := account.ClosingBalance(ctx, fromDate.Add(-time.Second))
		if err != nil {
			return nil, err
		}
		opening = carried
	}

	db := config.GetDB()
	type ledgerRow struct {
		Id              int
		TransactionId   int
		TransactionNo   string
		TransactionType string
		PostDate        time.Time
		EntryType       models.EntryType
		BaseAmount      decimal.Decimal
	}
	var ledgerRows []ledgerRow
	sql := `
		SELECT l.id, l.transaction_id, t.transaction_no, t.transaction_type,
			l.post_date, l.entry_type, l.base_amount
		FROM ledgers AS l
		JOIN transactions AS t ON t.id = l.transaction_id
		WHERE l.entity_id = ?
			AND l.account_id = ?
			AND l.post_date >= ?
			AND l.post_date <= ?`
	args := []interface{}{entityId, accountId, fromDate, toDate}
	if currencyId > 0 {
		sql += `
			AND l.currency_id = ?`
		args = append(args, currencyId)
	}
	sql += `
		ORDER BY l.post_date, l.id`
	err = db.WithContext(ctx).Raw(sql, args...).Scan(&ledgerRows).Error
	if err != nil {
		return nil, err
	}

	statement := &AccountStatement{
		AccountId:      account.ID,
		AccountName:    account.Name,
		FromDate:       fromDate,
		ToDate:         toDate,
		OpeningBalance: opening,
		Rows:           []*StatementRow{},
	}

	running := opening
	for _, row := range ledgerRows {
		if row.EntryType == models.EntryTypeDebit {
			running = running.Add(row.BaseAmount)
		} else {
			running = running.Sub(row.BaseAmount)
		}
		statement.Rows = append(statement.Rows, &StatementRow{
			Id:              row.Id,
			TransactionId:   row.TransactionId,
			TransactionNo:   row.TransactionNo,
			TransactionType: row.TransactionType,
			TypeLabel:       cfg.TransactionLabels[row.TransactionType],
			PostDate:        row.PostDate,
			EntryType:       row.EntryType,
			Amount:          row.BaseAmount,
			Balance:         running,
		})
	}
	statement.ClosingBalance = running

	return statement, nil
}
