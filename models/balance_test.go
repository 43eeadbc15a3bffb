package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBalanceOriginalAmount_ConvertsToFunctional(t *testing.T) {
	balance := Balance{
		Amount:       decimal.NewFromInt(1300),
		ExchangeRate: decimal.RequireFromString("1.3"),
	}
	require.True(t, balance.OriginalAmount().Equal(decimal.NewFromInt(1000)))
}

func TestBalanceOriginalAmount_RoundsPerRow(t *testing.T) {
	balance := Balance{
		Amount:       decimal.NewFromInt(1000),
		ExchangeRate: decimal.NewFromInt(3),
	}
	require.Equal(t, "333.3333", balance.OriginalAmount().String())
}

func TestIncomeStatementTypesRejectOpeningBalances(t *testing.T) {
	for _, accountType := range IncomeStatementAccountTypes {
		require.True(t, accountType.IsIncomeStatement(), "%s", accountType)
	}
	for _, accountType := range []AccountType{
		AccountTypeReceivable, AccountTypePayable, AccountTypeBank,
		AccountTypeEquity, AccountTypeInventory,
	} {
		require.False(t, accountType.IsIncomeStatement(), "%s", accountType)
	}
}
