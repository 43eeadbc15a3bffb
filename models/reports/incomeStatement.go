package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// IncomeStatement is the profit and loss over a window. Revenues present
// credit positive, expenses debit positive.
type IncomeStatement struct {
	FromDate        time.Time           `json:"from_date"`
	ToDate          time.Time           `json:"to_date"`
	Sections        []*StatementSection `json:"sections"`
	OperatingProfit decimal.Decimal     `json:"operating_profit"`
	NetProfit       decimal.Decimal     `json:"net_profit"`
}

var revenueAccountTypes = []models.AccountType{
	models.AccountTypeOperatingRevenue,
	models.AccountTypeNonOperatingRevenue,
}

var expenseAccountTypes = []models.AccountType{
	models.AccountTypeOperatingExpense,
	models.AccountTypeDirectExpense,
	models.AccountTypeOverheadExpense,
	models.AccountTypeOtherExpense,
}

// GetIncomeStatementReport nets posted revenue and expense activity between
// fromDate and toDate. Income statement accounts never carry opening
// balances, so the window alone determines every figure.
func GetIncomeStatementReport(ctx context.Context, fromDate time.Time, toDate time.Time) (*IncomeStatement, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, models.ErrEntityRequired
	}

	cfg := config.GetIFRS()
	if toDate.IsZero() {
		toDate = time.Now().UTC()
	}
	if fromDate.IsZero() {
		fromDate = models.YearStart(models.YearOf(toDate, cfg), cfg)
	}

	types := append(append([]models.AccountType{}, revenueAccountTypes...), expenseAccountTypes...)
	rows, err := accountMovements(ctx, entityId, types, fromDate, toDate, false, 0)
	if err != nil {
		return nil, err
	}

	// Revenues hold credit balances; flip them so income presents positive.
	sections := groupBySection(rows, cfg, func(t models.AccountType) decimal.Decimal {
		switch t {
		case models.AccountTypeOperatingRevenue, models.AccountTypeNonOperatingRevenue:
			return minusOne
		}
		return one
	})

	statement := &IncomeStatement{
		FromDate: fromDate,
		ToDate:   toDate,
		Sections: []*StatementSection{},
	}

	sectionTotal := func(name string) decimal.Decimal {
		section, ok := sections[name]
		if !ok {
			return decimal.Zero
		}
		statement.Sections = append(statement.Sections, section)
		return section.Total
	}

	operatingRevenue := sectionTotal(config.SectionOperatingRevenues)
	operatingExpenses := sectionTotal(config.SectionOperatingExpenses)
	nonOperatingRevenue := sectionTotal(config.SectionNonOperatingRevenues)
	nonOperatingExpenses := sectionTotal(config.SectionNonOperatingExpenses)

	statement.OperatingProfit = operatingRevenue.Sub(operatingExpenses)
	statement.NetProfit = statement.OperatingProfit.
		Add(nonOperatingRevenue).Sub(nonOperatingExpenses)
	return statement, nil
}
