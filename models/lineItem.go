package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// moneyPrecision matches the decimal(20,4) money columns. Conversions round
// at the line-item level so aggregates never drift from their parts.
const moneyPrecision = 4

// LineItem is one side of a transaction: quantity times unit amount against
// an account, plus VAT at the captured rate. The transaction owns its line
// items. Credited flips the item onto the main account's side of the entry
// (compound journals).
type LineItem struct {
	ID            int             `gorm:"primary_key" json:"id"`
	EntityId      string          `gorm:"index;not null" json:"entity_id"`
	TransactionId int             `gorm:"index;not null" json:"transaction_id"`
	AccountId     int             `gorm:"index;not null" json:"account_id"`
	VatId         int             `gorm:"index" json:"vat_id"`
	Narration     string          `gorm:"size:255" json:"narration"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);default:1" json:"quantity"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	VatRate       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_rate"`
	Credited      *bool           `gorm:"not null;default:false" json:"credited"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// vatAccountId is resolved from the vat rate at posting time, never stored.
	vatAccountId int `gorm:"-"`
}

type NewLineItem struct {
	AccountId int             `json:"account_id" validate:"required"`
	VatId     int             `json:"vat_id"`
	Narration string          `json:"narration"`
	Quantity  decimal.Decimal `json:"quantity"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Credited  bool            `json:"credited"`
}

// SubTotal is quantity times unit amount before VAT, in transaction currency.
func (l *LineItem) SubTotal() decimal.Decimal {
	return l.Quantity.Mul(l.Amount).Round(moneyPrecision)
}

// VatAmount is the VAT charged on the line at its captured rate.
func (l *LineItem) VatAmount() decimal.Decimal {
	if l.VatRate.IsZero() {
		return decimal.Zero
	}
	return l.SubTotal().Mul(l.VatRate).Div(decimal.NewFromInt(100)).Round(moneyPrecision)
}

// TotalAmount is the VAT-inclusive line amount.
func (l *LineItem) TotalAmount() decimal.Decimal {
	return l.SubTotal().Add(l.VatAmount())
}

func (l *LineItem) isCredited() bool {
	return l.Credited != nil && *l.Credited
}
