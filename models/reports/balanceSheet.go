package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// BalanceSheet is the statement of financial position as at a date. Assets
// present debit positive, liabilities and equity credit positive. Net profit
// for the year joins equity so the statement balances.
type BalanceSheet struct {
	EndDate          time.Time           `json:"end_date"`
	Sections         []*StatementSection `json:"sections"`
	TotalAssets      decimal.Decimal     `json:"total_assets"`
	TotalLiabilities decimal.Decimal     `json:"total_liabilities"`
	TotalEquity      decimal.Decimal     `json:"total_equity"`
	NetProfit        decimal.Decimal     `json:"net_profit"`
}

var assetAccountTypes = []models.AccountType{
	models.AccountTypeNonCurrentAsset,
	models.AccountTypeContraAsset,
	models.AccountTypeInventory,
	models.AccountTypeBank,
	models.AccountTypeCurrentAsset,
	models.AccountTypeReceivable,
}

var liabilityAccountTypes = []models.AccountType{
	models.AccountTypeNonCurrentLiability,
	models.AccountTypeControl,
	models.AccountTypeCurrentLiability,
	models.AccountTypePayable,
}

// GetBalanceSheetReport presents closing balances as at endDate: the year's
// opening balances plus posted movement from the fiscal year start.
func GetBalanceSheetReport(ctx context.Context, endDate time.Time) (*BalanceSheet, error) {

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

	types := append(append([]models.AccountType{}, assetAccountTypes...), liabilityAccountTypes...)
	types = append(types, models.AccountTypeEquity, models.AccountTypeReconciliation)
	rows, err := accountMovements(ctx, entityId, types, yearStart, endDate, true, year)
	if err != nil {
		return nil, err
	}

	isAsset := func(t models.AccountType) bool {
		for _, a := range assetAccountTypes {
			if t == a {
				return true
			}
		}
		return false
	}
	sections := groupBySection(rows, cfg, func(t models.AccountType) decimal.Decimal {
		if isAsset(t) || t == models.AccountTypeReconciliation {
			return one
		}
		return minusOne
	})

	sheet := &BalanceSheet{
		EndDate:  endDate,
		Sections: []*StatementSection{},
	}
	for _, name := range []string{
		config.SectionNonCurrentAssets,
		config.SectionCurrentAssets,
		config.SectionCurrentLiabilities,
		config.SectionNonCurrentLiabilities,
		config.SectionEquity,
		config.SectionReconciliation,
	} {
		section, ok := sections[name]
		if !ok {
			continue
		}
		sheet.Sections = append(sheet.Sections, section)
		switch name {
		case config.SectionNonCurrentAssets, config.SectionCurrentAssets:
			sheet.TotalAssets = sheet.TotalAssets.Add(section.Total)
		case config.SectionCurrentLiabilities, config.SectionNonCurrentLiabilities:
			sheet.TotalLiabilities = sheet.TotalLiabilities.Add(section.Total)
		case config.SectionEquity:
			sheet.TotalEquity = sheet.TotalEquity.Add(section.Total)
		}
	}

	// The year's result has not been closed to equity yet, so derive it and
	// carry it under equity.
	income, err := GetIncomeStatementReport(ctx, yearStart, endDate)
	if err != nil {
		return nil, err
	}
	sheet.NetProfit = income.NetProfit
	sheet.TotalEquity = sheet.TotalEquity.Add(sheet.NetProfit)

	return sheet, nil
}
