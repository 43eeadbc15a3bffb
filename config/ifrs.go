package config

import (
	"os"
	"strconv"
	"strings"
)

// IFRSConfig is the static reference data the posting rules and reports consume:
// human-readable labels for transaction type codes, the financial-statement
// section each account type reports under, and the fiscal-year start month.
//
// Reports and validation receive this struct explicitly; nothing reads it
// through a global lookup at query time.
type IFRSConfig struct {
	TransactionLabels map[string]string
	AccountLabels     map[string]string
	AccountSections   map[string]string
	YearStartMonth    int
}

// Financial statement section names.
const (
	SectionNonCurrentAssets      = "Non Current Assets"
	SectionCurrentAssets         = "Current Assets"
	SectionNonCurrentLiabilities = "Non Current Liabilities"
	SectionCurrentLiabilities    = "Current Liabilities"
	SectionEquity                = "Equity"
	SectionOperatingRevenues     = "Operating Revenues"
	SectionNonOperatingRevenues  = "Non Operating Revenues"
	SectionOperatingExpenses     = "Operating Expenses"
	SectionNonOperatingExpenses  = "Non Operating Expenses"
	SectionReconciliation        = "Reconciliation"
)

var ifrsConfig = &IFRSConfig{
	TransactionLabels: map[string]string{
		"CS": "Cash Sale",
		"IN": "Client Invoice",
		"CN": "Credit Note",
		"RC": "Client Receipt",
		"CP": "Cash Purchase",
		"BL": "Supplier Bill",
		"DN": "Debit Note",
		"PY": "Supplier Payment",
		"CE": "Contra Entry",
		"JN": "Journal Entry",
	},
	AccountLabels: map[string]string{
		"NON_CURRENT_ASSET":     "Non Current Asset",
		"CONTRA_ASSET":          "Contra Asset",
		"INVENTORY":             "Inventory",
		"BANK":                  "Bank",
		"CURRENT_ASSET":         "Current Asset",
		"RECEIVABLE":            "Receivable",
		"NON_CURRENT_LIABILITY": "Non Current Liability",
		"CONTROL":               "Control",
		"CURRENT_LIABILITY":     "Current Liability",
		"PAYABLE":               "Payable",
		"EQUITY":                "Equity",
		"OPERATING_REVENUE":     "Operating Revenue",
		"NON_OPERATING_REVENUE": "Non Operating Revenue",
		"OPERATING_EXPENSE":     "Operating Expense",
		"DIRECT_EXPENSE":        "Direct Expense",
		"OVERHEAD_EXPENSE":      "Overhead Expense",
		"OTHER_EXPENSE":         "Other Expense",
		"RECONCILIATION":        "Reconciliation",
	},
	AccountSections: map[string]string{
		"NON_CURRENT_ASSET":     SectionNonCurrentAssets,
		"CONTRA_ASSET":          SectionNonCurrentAssets,
		"INVENTORY":             SectionCurrentAssets,
		"BANK":                  SectionCurrentAssets,
		"CURRENT_ASSET":         SectionCurrentAssets,
		"RECEIVABLE":            SectionCurrentAssets,
		"NON_CURRENT_LIABILITY": SectionNonCurrentLiabilities,
		"CONTROL":               SectionCurrentLiabilities,
		"CURRENT_LIABILITY":     SectionCurrentLiabilities,
		"PAYABLE":               SectionCurrentLiabilities,
		"EQUITY":                SectionEquity,
		"OPERATING_REVENUE":     SectionOperatingRevenues,
		"NON_OPERATING_REVENUE": SectionNonOperatingRevenues,
		"OPERATING_EXPENSE":     SectionOperatingExpenses,
		"DIRECT_EXPENSE":        SectionOperatingExpenses,
		"OVERHEAD_EXPENSE":      SectionNonOperatingExpenses,
		"OTHER_EXPENSE":         SectionNonOperatingExpenses,
		"RECONCILIATION":        SectionReconciliation,
	},
	YearStartMonth: 1,
}

// GetIFRS returns the active IFRS reference configuration.
//
// Env override:
// - IFRS_YEAR_START_MONTH=7 (fiscal years starting in July)
func GetIFRS() *IFRSConfig {
	if v := strings.TrimSpace(os.Getenv("IFRS_YEAR_START_MONTH")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			ifrsConfig.YearStartMonth = m
		}
	}
	return ifrsConfig
}
