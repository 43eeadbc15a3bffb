package models

import (
	"errors"
	"slices"
)

// AccountType is the IFRS chart-of-accounts taxonomy. The string codes double
// as the keys into config.IFRSConfig lookups.
type AccountType string

const (
	AccountTypeNonCurrentAsset     AccountType = "NON_CURRENT_ASSET"
	AccountTypeContraAsset         AccountType = "CONTRA_ASSET"
	AccountTypeInventory           AccountType = "INVENTORY"
	AccountTypeBank                AccountType = "BANK"
	AccountTypeCurrentAsset        AccountType = "CURRENT_ASSET"
	AccountTypeReceivable          AccountType = "RECEIVABLE"
	AccountTypeNonCurrentLiability AccountType = "NON_CURRENT_LIABILITY"
	AccountTypeControl             AccountType = "CONTROL"
	AccountTypeCurrentLiability    AccountType = "CURRENT_LIABILITY"
	AccountTypePayable             AccountType = "PAYABLE"
	AccountTypeEquity              AccountType = "EQUITY"
	AccountTypeOperatingRevenue    AccountType = "OPERATING_REVENUE"
	AccountTypeNonOperatingRevenue AccountType = "NON_OPERATING_REVENUE"
	AccountTypeOperatingExpense    AccountType = "OPERATING_EXPENSE"
	AccountTypeDirectExpense       AccountType = "DIRECT_EXPENSE"
	AccountTypeOverheadExpense     AccountType = "OVERHEAD_EXPENSE"
	AccountTypeOtherExpense        AccountType = "OTHER_EXPENSE"
	AccountTypeReconciliation      AccountType = "RECONCILIATION"
)

var accountTypes = []AccountType{
	AccountTypeNonCurrentAsset, AccountTypeContraAsset, AccountTypeInventory,
	AccountTypeBank, AccountTypeCurrentAsset, AccountTypeReceivable,
	AccountTypeNonCurrentLiability, AccountTypeControl, AccountTypeCurrentLiability,
	AccountTypePayable, AccountTypeEquity,
	AccountTypeOperatingRevenue, AccountTypeNonOperatingRevenue,
	AccountTypeOperatingExpense, AccountTypeDirectExpense,
	AccountTypeOverheadExpense, AccountTypeOtherExpense,
	AccountTypeReconciliation,
}

// IncomeStatementAccountTypes are the account classes that report on the
// income statement. They can never carry opening balances.
var IncomeStatementAccountTypes = []AccountType{
	AccountTypeOperatingRevenue, AccountTypeNonOperatingRevenue,
	AccountTypeOperatingExpense, AccountTypeDirectExpense,
	AccountTypeOverheadExpense, AccountTypeOtherExpense,
}

func (t AccountType) IsIncomeStatement() bool {
	return slices.Contains(IncomeStatementAccountTypes, t)
}

func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if !slices.Contains(accountTypes, t) {
		return "", errors.New("invalid account type")
	}
	return t, nil
}

// TransactionType is the two-letter document type code.
type TransactionType string

const (
	TransactionTypeCashSale        TransactionType = "CS"
	TransactionTypeClientInvoice   TransactionType = "IN"
	TransactionTypeCreditNote      TransactionType = "CN"
	TransactionTypeClientReceipt   TransactionType = "RC"
	TransactionTypeCashPurchase    TransactionType = "CP"
	TransactionTypeSupplierBill    TransactionType = "BL"
	TransactionTypeDebitNote       TransactionType = "DN"
	TransactionTypeSupplierPayment TransactionType = "PY"
	TransactionTypeContraEntry     TransactionType = "CE"
	TransactionTypeJournalEntry    TransactionType = "JN"
)

var transactionTypes = []TransactionType{
	TransactionTypeCashSale, TransactionTypeClientInvoice, TransactionTypeCreditNote,
	TransactionTypeClientReceipt, TransactionTypeCashPurchase, TransactionTypeSupplierBill,
	TransactionTypeDebitNote, TransactionTypeSupplierPayment, TransactionTypeContraEntry,
	TransactionTypeJournalEntry,
}

// ClearableTransactionTypes accumulate outstanding exposure that assignments
// reduce. Journal entries are clearable subject to the schedule parity rule.
var ClearableTransactionTypes = []TransactionType{
	TransactionTypeClientInvoice,
	TransactionTypeSupplierBill,
	TransactionTypeJournalEntry,
}

// AssignableTransactionTypes may clear other transactions.
var AssignableTransactionTypes = []TransactionType{
	TransactionTypeClientReceipt,
	TransactionTypeSupplierPayment,
	TransactionTypeCreditNote,
	TransactionTypeDebitNote,
	TransactionTypeJournalEntry,
}

func (t TransactionType) IsClearable() bool {
	return slices.Contains(ClearableTransactionTypes, t)
}

func (t TransactionType) IsAssignable() bool {
	return slices.Contains(AssignableTransactionTypes, t)
}

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !slices.Contains(transactionTypes, t) {
		return "", errors.New("invalid transaction type")
	}
	return t, nil
}

// EntryType is the side of a double entry. Balances reuse it as their
// balance type.
type EntryType string

const (
	EntryTypeDebit  EntryType = "D"
	EntryTypeCredit EntryType = "C"
)

func (e EntryType) Opposite() EntryType {
	if e == EntryTypeDebit {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}

func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(s) {
	case EntryTypeDebit:
		return EntryTypeDebit, nil
	case EntryTypeCredit:
		return EntryTypeCredit, nil
	}
	return "", errors.New("invalid entry type")
}

// PeriodStatus is the lifecycle of a reporting period.
type PeriodStatus string

const (
	PeriodStatusOpen      PeriodStatus = "OPEN"
	PeriodStatusAdjusting PeriodStatus = "ADJUSTING"
	PeriodStatusClosed    PeriodStatus = "CLOSED"
)
