package models

import "slices"

// Each transaction type is a variant over the same posting capability set:
// the rule supplies the account types its main account and line items must
// carry, and which side of the entry the main account takes. Dispatch is by
// type tag.
type transactionTypeRule struct {
	// MainAccountTypes the main account must be one of; nil allows any.
	MainAccountTypes []AccountType
	// LineItemAccountTypes every line item account must be one of; nil allows any.
	LineItemAccountTypes []AccountType
	// Credited is the main account's entry side: true posts the main account
	// as a credit, with line items on the debit side.
	Credited bool
}

// purchasableAccountTypes are the classes a buying-family document may charge.
var purchasableAccountTypes = []AccountType{
	AccountTypeDirectExpense,
	AccountTypeOverheadExpense,
	AccountTypeOtherExpense,
	AccountTypeNonCurrentAsset,
	AccountTypeCurrentAsset,
	AccountTypeInventory,
}

var transactionTypeRules = map[TransactionType]transactionTypeRule{
	TransactionTypeClientInvoice: {
		MainAccountTypes:     []AccountType{AccountTypeReceivable},
		LineItemAccountTypes: []AccountType{AccountTypeOperatingRevenue},
		Credited:             false,
	},
	TransactionTypeCashSale: {
		MainAccountTypes:     []AccountType{AccountTypeBank},
		LineItemAccountTypes: []AccountType{AccountTypeOperatingRevenue},
		Credited:             false,
	},
	TransactionTypeCreditNote: {
		MainAccountTypes:     []AccountType{AccountTypeReceivable},
		LineItemAccountTypes: []AccountType{AccountTypeOperatingRevenue},
		Credited:             true,
	},
	TransactionTypeClientReceipt: {
		MainAccountTypes:     []AccountType{AccountTypeReceivable},
		LineItemAccountTypes: []AccountType{AccountTypeBank},
		Credited:             true,
	},
	TransactionTypeSupplierBill: {
		MainAccountTypes:     []AccountType{AccountTypePayable},
		LineItemAccountTypes: purchasableAccountTypes,
		Credited:             true,
	},
	TransactionTypeCashPurchase: {
		MainAccountTypes:     []AccountType{AccountTypeBank},
		LineItemAccountTypes: purchasableAccountTypes,
		Credited:             true,
	},
	TransactionTypeDebitNote: {
		MainAccountTypes:     []AccountType{AccountTypePayable},
		LineItemAccountTypes: purchasableAccountTypes,
		Credited:             false,
	},
	TransactionTypeSupplierPayment: {
		MainAccountTypes:     []AccountType{AccountTypePayable},
		LineItemAccountTypes: []AccountType{AccountTypeBank},
		Credited:             false,
	},
	TransactionTypeContraEntry: {
		MainAccountTypes:     []AccountType{AccountTypeBank},
		LineItemAccountTypes: []AccountType{AccountTypeBank},
		Credited:             false,
	},
	// Journal entries post against any account; the caller picks the side.
	TransactionTypeJournalEntry: {},
}

// validateMainAccount enforces the variant's main account rule (the save
// contract).
func validateMainAccount(txnType TransactionType, accountType AccountType) error {
	rule := transactionTypeRules[txnType]
	if rule.MainAccountTypes == nil {
		return nil
	}
	if !slices.Contains(rule.MainAccountTypes, accountType) {
		return MainAccountError{TransactionType: txnType, Required: rule.MainAccountTypes}
	}
	return nil
}

// validateLineItemAccount enforces the variant's line item rule (the post
// contract). The first violation aborts the whole post.
func validateLineItemAccount(txnType TransactionType, accountType AccountType) error {
	rule := transactionTypeRules[txnType]
	if rule.LineItemAccountTypes == nil {
		return nil
	}
	if !slices.Contains(rule.LineItemAccountTypes, accountType) {
		return LineItemAccountError{TransactionType: txnType, Allowed: rule.LineItemAccountTypes}
	}
	return nil
}

func defaultCredited(txnType TransactionType) bool {
	return transactionTypeRules[txnType].Credited
}

// ScheduleEligible applies the journal entry parity rule to schedule
// candidates: a credited journal entry never ages a receivable account, and a
// non-credited one never ages a payable account. The rule is preserved as
// observed; reports that enumerate clearable journal entries must all use it.
func ScheduleEligible(accountType AccountType, txnType TransactionType, credited bool) bool {
	if txnType != TransactionTypeJournalEntry {
		return txnType.IsClearable()
	}
	if accountType == AccountTypeReceivable && credited {
		return false
	}
	if accountType == AccountTypePayable && !credited {
		return false
	}
	return true
}
