package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"github.com/shopspring/decimal"
)

// AccountBalanceRow is one account's balance inside a statement section.
type AccountBalanceRow struct {
	AccountId   int                `json:"account_id"`
	AccountName string             `json:"account_name"`
	AccountCode string             `json:"account_code"`
	AccountType models.AccountType `json:"account_type"`
	Amount      decimal.Decimal    `json:"amount"`
}

// StatementSection groups account balances under a financial statement
// heading.
type StatementSection struct {
	Name     string               `json:"name"`
	Accounts []*AccountBalanceRow `json:"accounts"`
	Total    decimal.Decimal      `json:"total"`
}

// accountMovements nets posted ledger activity per account over a window,
// debit positive, restricted to the given account types.
func accountMovements(ctx context.Context, entityId string, types []models.AccountType, from time.Time, to time.Time, withOpening bool, year int) ([]AccountBalanceRow, error) {
	db := config.GetDB()

	typeNames := make([]string, 0, len(types))
	for _, t := range types {
		typeNames = append(typeNames, string(t))
	}

	query := `
		SELECT a.id AS account_id, a.name AS account_name, a.code AS account_code,
			a.account_type AS account_type,
			COALESCE(mv.moved, 0)`
	args := []interface{}{}
	if withOpening {
		query += ` + COALESCE(op.opening, 0)`
	}
	query += ` AS amount
		FROM accounts AS a
		LEFT JOIN (
			SELECT account_id,
				SUM(CASE WHEN entry_type = 'D' THEN base_amount ELSE -base_amount END) AS moved
			FROM ledgers
			WHERE entity_id = ? AND post_date >= ? AND post_date <= ?
			GROUP BY account_id
		) AS mv ON mv.account_id = a.id`
	args = append(args, entityId, from, to)
	if withOpening {
		query += `
		LEFT JOIN (
			SELECT account_id,
				SUM(CASE WHEN balance_type = 'D' THEN amount / exchange_rate ELSE -amount / exchange_rate END) AS opening
			FROM balances
			WHERE entity_id = ? AND year = ?
			GROUP BY account_id
		) AS op ON op.account_id = a.id`
		args = append(args, entityId, year)
	}
	query += `
		WHERE a.entity_id = ?
			AND a.deleted_at IS NULL
			AND a.account_type IN ?
		ORDER BY a.code, a.name`
	args = append(args, entityId, typeNames)

	var rows []AccountBalanceRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := rows[:0]
	for _, row := range rows {
		if !row.Amount.IsZero() {
			out = append(out, row)
		}
	}
	return out, nil
}

// groupBySection buckets account rows under their configured statement
// section. The sign function orients each amount for presentation: revenue
// and liability sections show credit balances positive.
func groupBySection(rows []AccountBalanceRow, cfg *config.IFRSConfig, sign func(models.AccountType) decimal.Decimal) map[string]*StatementSection {
	sections := map[string]*StatementSection{}
	for i := range rows {
		row := rows[i]
		name := cfg.AccountSections[string(row.AccountType)]
		section, ok := sections[name]
		if !ok {
			section = &StatementSection{Name: name, Accounts: []*AccountBalanceRow{}}
			sections[name] = section
		}
		row.Amount = row.Amount.Mul(sign(row.AccountType))
		section.Accounts = append(section.Accounts, &row)
		section.Total = section.Total.Add(row.Amount)
	}
	return sections
}

var one = decimal.NewFromInt(1)
var minusOne = decimal.NewFromInt(-1)
