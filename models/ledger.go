package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger is one side of a double entry. Rows are written only by posting,
// inside the posting transaction, and are append only: each row's hash chains
// to the entity's previous row so tampering is detectable.
type Ledger struct {
	ID            int             `gorm:"primary_key" json:"id"`
	EntityId      string          `gorm:"index;not null" json:"entity_id"`
	TransactionId int             `gorm:"index;not null" json:"transaction_id"`
	LineItemId    int             `gorm:"index" json:"line_item_id"`
	VatId         int             `gorm:"index" json:"vat_id"`
	AccountId     int             `gorm:"index;not null" json:"account_id"`
	Folio         string          `gorm:"size:20;not null" json:"folio"`
	PostDate      time.Time       `gorm:"index;not null" json:"post_date"`
	EntryType     EntryType       `gorm:"size:1;not null" json:"entry_type"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	BaseAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"base_amount"`
	ExchangeRate  decimal.Decimal `gorm:"type:decimal(20,4);default:1" json:"exchange_rate"`
	CurrencyId    int             `gorm:"index" json:"currency_id"`
	Hash          string          `gorm:"size:64" json:"hash"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (l Ledger) GetEntityId() string {
	return l.EntityId
}

func (l *Ledger) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("ledger entries cannot be modified")
}

func (l *Ledger) BeforeDelete(tx *gorm.DB) error {
	return errors.New("ledger entries cannot be deleted")
}

// chainHash covers the row's financial content plus the previous row's hash.
func (l *Ledger) chainHash(prevHash string) string {
	payload := fmt.Sprintf("%s|%d|%d|%s|%s|%s|%s|%s|%s",
		l.EntityId, l.TransactionId, l.AccountId, l.Folio,
		l.PostDate.UTC().Format(time.RFC3339), l.EntryType,
		l.Amount.StringFixed(moneyPrecision), l.BaseAmount.StringFixed(moneyPrecision),
		prevHash)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// lastLedgerHash is the hash of the entity's most recent row, empty for a
// fresh ledger. Callers hold the entity posting lock.
func lastLedgerHash(tx *gorm.DB, entityId string) (string, error) {
	var last Ledger
	err := tx.Where("entity_id = ?", entityId).Order("id desc").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return last.Hash, nil
}

// VerifyLedgerHashes walks the entity's ledger in insertion order and recomputes
// the chain. It returns the id of the first corrupted row, or 0 when the
// chain is intact.
func VerifyLedgerHashes(ctx context.Context, entityId string) (int, error) {
	db := config.GetDB()

	prevHash := ""
	badId := 0
	rows := make([]Ledger, 0, 500)
	err := db.WithContext(ctx).Where("entity_id = ?", entityId).
		Order("id").FindInBatches(&rows, 500, func(tx *gorm.DB, batch int) error {
		for i := range rows {
			if rows[i].chainHash(prevHash) != rows[i].Hash {
				badId = rows[i].ID
				return fmt.Errorf("ledger row %d fails hash verification", rows[i].ID)
			}
			prevHash = rows[i].Hash
		}
		return nil
	}).Error
	if badId != 0 {
		return badId, nil
	}
	if err != nil {
		return 0, err
	}
	return 0, nil
}

// LedgerTotals sums posted debits and credits for the entity in functional
// currency. A balanced ledger has equal totals.
func LedgerTotals(ctx context.Context, entityId string) (decimal.Decimal, decimal.Decimal, error) {
	db := config.GetDB()

	var row struct {
		Debits  decimal.Decimal
		Credits decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&Ledger{}).
		Select(`COALESCE(SUM(CASE WHEN entry_type = 'D' THEN base_amount ELSE 0 END), 0) AS debits,
			COALESCE(SUM(CASE WHEN entry_type = 'C' THEN base_amount ELSE 0 END), 0) AS credits`).
		Where("entity_id = ?", entityId).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return row.Debits, row.Credits, nil
}

func GetLedgers(ctx context.Context, transactionId int) ([]*Ledger, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	db := config.GetDB()
	var results []*Ledger
	err := db.WithContext(ctx).
		Where("entity_id = ? AND transaction_id = ?", entityId, transactionId).
		Order("id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
