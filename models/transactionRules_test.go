package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMainAccountRules(t *testing.T) {
	cases := []struct {
		txnType TransactionType
		good    AccountType
		bad     AccountType
	}{
		{TransactionTypeClientInvoice, AccountTypeReceivable, AccountTypeBank},
		{TransactionTypeCashSale, AccountTypeBank, AccountTypeReceivable},
		{TransactionTypeCreditNote, AccountTypeReceivable, AccountTypePayable},
		{TransactionTypeClientReceipt, AccountTypeReceivable, AccountTypeOperatingRevenue},
		{TransactionTypeSupplierBill, AccountTypePayable, AccountTypeReceivable},
		{TransactionTypeCashPurchase, AccountTypeBank, AccountTypePayable},
		{TransactionTypeDebitNote, AccountTypePayable, AccountTypeBank},
		{TransactionTypeSupplierPayment, AccountTypePayable, AccountTypeEquity},
		{TransactionTypeContraEntry, AccountTypeBank, AccountTypePayable},
	}
	for _, tc := range cases {
		if err := validateMainAccount(tc.txnType, tc.good); err != nil {
			t.Errorf("%s should accept %s main account: %v", tc.txnType, tc.good, err)
		}
		err := validateMainAccount(tc.txnType, tc.bad)
		if err == nil {
			t.Errorf("%s should reject %s main account", tc.txnType, tc.bad)
			continue
		}
		var mainErr MainAccountError
		require.ErrorAs(t, err, &mainErr)
		require.Equal(t, tc.txnType, mainErr.TransactionType)
	}
}

func TestJournalEntryAcceptsAnyMainAccount(t *testing.T) {
	for _, accountType := range accountTypes {
		require.NoError(t, validateMainAccount(TransactionTypeJournalEntry, accountType))
		require.NoError(t, validateLineItemAccount(TransactionTypeJournalEntry, accountType))
	}
}

func TestLineItemAccountRules(t *testing.T) {
	// Selling documents charge revenue only.
	require.NoError(t, validateLineItemAccount(TransactionTypeClientInvoice, AccountTypeOperatingRevenue))
	require.Error(t, validateLineItemAccount(TransactionTypeClientInvoice, AccountTypeBank))

	// Buying documents may charge expenses, assets or inventory.
	for _, accountType := range purchasableAccountTypes {
		require.NoError(t, validateLineItemAccount(TransactionTypeSupplierBill, accountType))
		require.NoError(t, validateLineItemAccount(TransactionTypeCashPurchase, accountType))
		require.NoError(t, validateLineItemAccount(TransactionTypeDebitNote, accountType))
	}
	require.Error(t, validateLineItemAccount(TransactionTypeSupplierBill, AccountTypeOperatingRevenue))

	// Settlement documents move money through bank accounts.
	require.NoError(t, validateLineItemAccount(TransactionTypeClientReceipt, AccountTypeBank))
	require.Error(t, validateLineItemAccount(TransactionTypeClientReceipt, AccountTypeOperatingRevenue))
	require.NoError(t, validateLineItemAccount(TransactionTypeContraEntry, AccountTypeBank))
	require.Error(t, validateLineItemAccount(TransactionTypeContraEntry, AccountTypeCurrentAsset))
}

func TestDefaultCreditedPerType(t *testing.T) {
	creditedTypes := []TransactionType{
		TransactionTypeClientReceipt,
		TransactionTypeCreditNote,
		TransactionTypeSupplierBill,
		TransactionTypeCashPurchase,
	}
	debitedTypes := []TransactionType{
		TransactionTypeClientInvoice,
		TransactionTypeCashSale,
		TransactionTypeSupplierPayment,
		TransactionTypeDebitNote,
		TransactionTypeContraEntry,
	}
	for _, txnType := range creditedTypes {
		require.True(t, defaultCredited(txnType), "%s should default to credit main", txnType)
	}
	for _, txnType := range debitedTypes {
		require.False(t, defaultCredited(txnType), "%s should default to debit main", txnType)
	}
}

func TestClearableAndAssignableSets(t *testing.T) {
	require.True(t, TransactionTypeClientInvoice.IsClearable())
	require.True(t, TransactionTypeSupplierBill.IsClearable())
	require.True(t, TransactionTypeJournalEntry.IsClearable())
	require.False(t, TransactionTypeClientReceipt.IsClearable())
	require.False(t, TransactionTypeCashSale.IsClearable())

	require.True(t, TransactionTypeClientReceipt.IsAssignable())
	require.True(t, TransactionTypeSupplierPayment.IsAssignable())
	require.True(t, TransactionTypeCreditNote.IsAssignable())
	require.True(t, TransactionTypeDebitNote.IsAssignable())
	require.True(t, TransactionTypeJournalEntry.IsAssignable())
	require.False(t, TransactionTypeClientInvoice.IsAssignable())
	require.False(t, TransactionTypeContraEntry.IsAssignable())
}

func TestScheduleEligibleParity(t *testing.T) {
	// Receivable schedules skip credited journal entries, payable schedules
	// skip debited ones.
	require.False(t, ScheduleEligible(AccountTypeReceivable, TransactionTypeJournalEntry, true))
	require.True(t, ScheduleEligible(AccountTypeReceivable, TransactionTypeJournalEntry, false))
	require.False(t, ScheduleEligible(AccountTypePayable, TransactionTypeJournalEntry, false))
	require.True(t, ScheduleEligible(AccountTypePayable, TransactionTypeJournalEntry, true))

	// Non journal clearables pass regardless of side.
	require.True(t, ScheduleEligible(AccountTypeReceivable, TransactionTypeClientInvoice, false))
	require.True(t, ScheduleEligible(AccountTypePayable, TransactionTypeSupplierBill, true))
}
