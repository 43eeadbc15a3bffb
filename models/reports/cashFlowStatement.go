package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// CashFlowStatement reconciles net profit to the movement in bank balances
// over a window using the indirect method.
type CashFlowStatement struct {
	FromDate          time.Time       `json:"from_date"`
	ToDate            time.Time       `json:"to_date"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	OperatingCashFlow decimal.Decimal `json:"operating_cash_flow"`
	InvestingCashFlow decimal.Decimal `json:"investing_cash_flow"`
	FinancingCashFlow decimal.Decimal `json:"financing_cash_flow"`
	NetCashFlow       decimal.Decimal `json:"net_cash_flow"`
	BankMovement      decimal.Decimal `json:"bank_movement"`
}

// GetCashFlowStatementReport derives cash flows from ledger movement by
// section: working capital shifts adjust net profit into operating cash,
// non current asset movement is investing, equity and non current liability
// movement is financing. NetCashFlow agrees with BankMovement when the
// ledger is balanced.
func GetCashFlowStatementReport(ctx context.Context, fromDate time.Time, toDate time.Time) (*CashFlowStatement, error) {

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

	income, err := GetIncomeStatementReport(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	// Net debit movement per group over the window.
	movement := func(types ...models.AccountType) (decimal.Decimal, error) {
		rows, err := accountMovements(ctx, entityId, types, fromDate, toDate, false, 0)
		if err != nil {
			return decimal.Zero, err
		}
		total := decimal.Zero
		for i := range rows {
			total = total.Add(rows[i].Amount)
		}
		return total, nil
	}

	workingCapitalAssets, err := movement(
		models.AccountTypeReceivable,
		models.AccountTypeCurrentAsset,
		models.AccountTypeInventory,
		models.AccountTypeContraAsset,
	)
	if err != nil {
		return nil, err
	}
	workingCapitalLiabilities, err := movement(
		models.AccountTypePayable,
		models.AccountTypeCurrentLiability,
		models.AccountTypeControl,
		models.AccountTypeReconciliation,
	)
	if err != nil {
		return nil, err
	}
	investing, err := movement(models.AccountTypeNonCurrentAsset)
	if err != nil {
		return nil, err
	}
	financing, err := movement(
		models.AccountTypeEquity,
		models.AccountTypeNonCurrentLiability,
	)
	if err != nil {
		return nil, err
	}
	bank, err := movement(models.AccountTypeBank)
	if err != nil {
		return nil, err
	}

	statement := &CashFlowStatement{
		FromDate:  fromDate,
		ToDate:    toDate,
		NetProfit: income.NetProfit,
	}
	// An increase in receivables consumes cash; an increase in payables
	// (credit movement, negative here) releases it.
	statement.OperatingCashFlow = income.NetProfit.
		Sub(workingCapitalAssets).
		Sub(workingCapitalLiabilities)
	statement.InvestingCashFlow = investing.Neg()
	statement.FinancingCashFlow = financing.Neg()
	statement.NetCashFlow = statement.OperatingCashFlow.
		Add(statement.InvestingCashFlow).
		Add(statement.FinancingCashFlow)
	statement.BankMovement = bank
	return statement, nil
}
