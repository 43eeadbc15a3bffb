package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account's net position, debit or credit.
type TrialBalanceRow struct {
	AccountId   int                `json:"account_id"`
	AccountName string             `json:"account_name"`
	AccountCode string             `json:"account_code"`
	AccountType models.AccountType `json:"account_type"`
	Section     string             `json:"section"`
	Debit       decimal.Decimal    `json:"debit"`
	Credit      decimal.Decimal    `json:"credit"`
}

// TrialBalance lists every account with activity as at a date. A healthy
// ledger has TotalDebits equal to TotalCredits.
type TrialBalance struct {
	EndDate      time.Time          `json:"end_date"`
	Rows         []*TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal    `json:"total_debits"`
	TotalCredits decimal.Decimal    `json:"total_credits"`
}

// GetTrialBalanceReport nets each account's opening balance and posted
// movement up to endDate, presenting net debits and net credits per account.
func GetTrialBalanceReport(ctx context.Context, endDate time.Time) (*TrialBalance, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, models.ErrEntityRequired
	}

	cfg := config.GetIFRS()
	if endDate.IsZero() {
		endDate = time.Now().UTC()
	}
	year := models.YearOf(endDate, cfg)
	yearStart := models.YearStart(year, cfg)

	db := config.GetDB()
	type accountNet struct {
		AccountId   int
		AccountName string
		AccountCode string
		AccountType models.AccountType
		Net         decimal.Decimal
	}
	var nets []accountNet
	err := db.WithContext(ctx).Raw(`
		SELECT a.id AS account_id, a.name AS account_name, a.code AS account_code,
			a.account_type AS account_type,
			COALESCE(op.opening, 0) + COALESCE(mv.moved, 0) AS net
		FROM accounts AS a
		LEFT JOIN (
			SELECT account_id,
				SUM(CASE WHEN balance_type = 'D' THEN amount / exchange_rate ELSE -amount / exchange_rate END) AS opening
			FROM balances
			WHERE entity_id = ? AND year = ?
			GROUP BY account_id
		) AS op ON op.account_id = a.id
		LEFT JOIN (
			SELECT account_id,
				SUM(CASE WHEN entry_type = 'D' THEN base_amount ELSE -base_amount END) AS moved
			FROM ledgers
			WHERE entity_id = ? AND post_date >= ? AND post_date <= ?
			GROUP BY account_id
		) AS mv ON mv.account_id = a.id
		WHERE a.entity_id = ?
			AND a.deleted_at IS NULL
			AND (op.account_id IS NOT NULL OR mv.account_id IS NOT NULL)
		ORDER BY a.code, a.name`,
		entityId, year, entityId, yearStart, endDate, entityId).Scan(&nets).Error
	if err != nil {
		return nil, err
	}

	report := &TrialBalance{
		EndDate: endDate,
		Rows:    []*TrialBalanceRow{},
	}
	for _, net := range nets {
		row := &TrialBalanceRow{
			AccountId:   net.AccountId,
			AccountName: net.AccountName,
			AccountCode: net.AccountCode,
			AccountType: net.AccountType,
			Section:     cfg.AccountSections[string(net.AccountType)],
		}
		if net.Net.IsNegative() {
			row.Credit = net.Net.Abs()
		} else {
			row.Debit = net.Net
		}
		report.Rows = append(report.Rows, row)
		report.TotalDebits = report.TotalDebits.Add(row.Debit)
		report.TotalCredits = report.TotalCredits.Add(row.Credit)
	}
	return report, nil
}
