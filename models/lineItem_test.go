package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLineItemAmounts(t *testing.T) {
	item := LineItem{
		Quantity: decimal.NewFromInt(3),
		Amount:   decimal.RequireFromString("19.99"),
		VatRate:  decimal.NewFromInt(5),
	}

	require.True(t, item.SubTotal().Equal(decimal.RequireFromString("59.97")))
	// 59.97 * 5% = 2.9985
	require.True(t, item.VatAmount().Equal(decimal.RequireFromString("2.9985")))
	require.True(t, item.TotalAmount().Equal(decimal.RequireFromString("62.9685")))
}

func TestLineItemAmounts_RoundToMoneyPrecision(t *testing.T) {
	item := LineItem{
		Quantity: decimal.NewFromInt(1),
		Amount:   decimal.RequireFromString("0.33333"),
	}
	// Sub totals carry at most four decimal places.
	require.Equal(t, "0.3333", item.SubTotal().String())
}

func TestLineItemAmounts_ZeroVat(t *testing.T) {
	item := LineItem{
		Quantity: decimal.NewFromInt(2),
		Amount:   decimal.NewFromInt(100),
	}
	require.True(t, item.VatAmount().IsZero())
	require.True(t, item.TotalAmount().Equal(decimal.NewFromInt(200)))
}
