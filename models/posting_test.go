package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testTransaction(txnType TransactionType, credited bool, rate string, items ...LineItem) *Transaction {
	r, _ := decimal.NewFromString(rate)
	return &Transaction{
		ID:              1,
		EntityId:        "entity-1",
		TransactionType: txnType,
		TransactionNo:   string(txnType) + "00001",
		TransactionDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		AccountId:       100,
		CurrencyId:      1,
		ExchangeRate:    r,
		Credited:        &credited,
		LineItems:       items,
	}
}

func testItem(accountId int, amount string, quantity string, vatRate string, credited bool) LineItem {
	a, _ := decimal.NewFromString(amount)
	q, _ := decimal.NewFromString(quantity)
	v, _ := decimal.NewFromString(vatRate)
	return LineItem{
		ID:        accountId,
		AccountId: accountId,
		Quantity:  q,
		Amount:    a,
		VatRate:   v,
		Credited:  &credited,
	}
}

func sumBySide(rows []Ledger) (debits, credits decimal.Decimal) {
	for _, row := range rows {
		if row.EntryType == EntryTypeDebit {
			debits = debits.Add(row.BaseAmount)
		} else {
			credits = credits.Add(row.BaseAmount)
		}
	}
	return debits, credits
}

func TestBuildLedgerRows_InvoiceBalances(t *testing.T) {
	txn := testTransaction(TransactionTypeClientInvoice, false, "1",
		testItem(200, "1000", "1", "0", false))

	rows, err := buildLedgerRows(txn)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Revenue line credits, the receivable main account debits the total.
	require.Equal(t, EntryTypeCredit, rows[0].EntryType)
	require.Equal(t, 200, rows[0].AccountId)
	require.Equal(t, EntryTypeDebit, rows[1].EntryType)
	require.Equal(t, 100, rows[1].AccountId)
	require.True(t, rows[1].Amount.Equal(decimal.NewFromInt(1000)))

	debits, credits := sumBySide(rows)
	require.True(t, debits.Equal(credits), "debits %s credits %s", debits, credits)
}

func TestBuildLedgerRows_VatPostsOwnRow(t *testing.T) {
	item := testItem(200, "1000", "1", "5", false)
	item.VatId = 9
	item.vatAccountId = 300
	txn := testTransaction(TransactionTypeClientInvoice, false, "1", item)

	rows, err := buildLedgerRows(txn)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, 300, rows[1].AccountId)
	require.Equal(t, 9, rows[1].VatId)
	require.True(t, rows[1].Amount.Equal(decimal.NewFromInt(50)))

	// Main row carries the vat inclusive total.
	require.True(t, rows[2].Amount.Equal(decimal.NewFromInt(1050)))

	debits, credits := sumBySide(rows)
	require.True(t, debits.Equal(credits))
}

func TestBuildLedgerRows_CreditedLineItemFlipsSide(t *testing.T) {
	// Compound journal: 800 debit line, 300 flipped onto the credit side,
	// main account picks up the 500 net.
	txn := testTransaction(TransactionTypeJournalEntry, true,
		"1",
		testItem(200, "800", "1", "0", false),
		testItem(201, "300", "1", "0", true))

	rows, err := buildLedgerRows(txn)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, EntryTypeDebit, rows[0].EntryType)
	require.Equal(t, EntryTypeCredit, rows[1].EntryType)
	require.Equal(t, EntryTypeCredit, rows[2].EntryType)
	require.True(t, rows[2].Amount.Equal(decimal.NewFromInt(500)))

	debits, credits := sumBySide(rows)
	require.True(t, debits.Equal(credits))
}

func TestBuildLedgerRows_ZeroTotalRejected(t *testing.T) {
	txn := testTransaction(TransactionTypeClientInvoice, false, "1",
		testItem(200, "0", "1", "0", false))

	_, err := buildLedgerRows(txn)
	require.ErrorIs(t, err, ErrMissingLineItems)
}

func TestBuildLedgerRows_NegativeNetRejected(t *testing.T) {
	txn := testTransaction(TransactionTypeJournalEntry, false,
		"1",
		testItem(200, "100", "1", "0", false),
		testItem(201, "400", "1", "0", true))

	_, err := buildLedgerRows(txn)
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestBuildLedgerRows_ForeignCurrencyConvertsPerRow(t *testing.T) {
	item := testItem(200, "1000", "1", "5", false)
	item.VatId = 9
	item.vatAccountId = 300
	txn := testTransaction(TransactionTypeClientInvoice, false, "1300", item)

	rows, err := buildLedgerRows(txn)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for _, row := range rows[:len(rows)-1] {
		expected := row.Amount.Div(txn.ExchangeRate).Round(moneyPrecision)
		require.True(t, row.BaseAmount.Equal(expected),
			"row %d base %s expected %s", row.AccountId, row.BaseAmount, expected)
	}
	// The main row carries the sum of the rounded counterpart rows, not its
	// own conversion of 1050/1300.
	main := rows[len(rows)-1]
	require.True(t, main.BaseAmount.Equal(rows[0].BaseAmount.Add(rows[1].BaseAmount)),
		"main base %s", main.BaseAmount)

	debits, credits := sumBySide(rows)
	require.True(t, debits.Equal(credits), "debits %s credits %s", debits, credits)
}

func TestBuildLedgerRows_ForeignCurrencyAggregateBalances(t *testing.T) {
	// Two 100 unit lines at rate 3: each rounds to 33.3333, while 200/3
	// rounds to 66.6667. The sides must still match exactly.
	txn := testTransaction(TransactionTypeClientInvoice, false, "3",
		testItem(200, "100", "1", "0", false),
		testItem(201, "100", "1", "0", false))

	rows, err := buildLedgerRows(txn)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	main := rows[len(rows)-1]
	require.True(t, main.BaseAmount.Equal(decimal.RequireFromString("66.6666")),
		"main base %s", main.BaseAmount)

	debits, credits := sumBySide(rows)
	require.True(t, debits.Equal(credits), "debits %s credits %s", debits, credits)
}

func TestBuildLedgerRows_QuantityTimesAmount(t *testing.T) {
	txn := testTransaction(TransactionTypeSupplierBill, true, "1",
		testItem(200, "33.335", "3", "0", false))

	rows, err := buildLedgerRows(txn)
	require.NoError(t, err)
	require.True(t, rows[0].Amount.Equal(decimal.RequireFromString("100.005")),
		"got %s", rows[0].Amount)
	require.Equal(t, EntryTypeDebit, rows[0].EntryType)
	require.Equal(t, EntryTypeCredit, rows[1].EntryType)
}
