package models

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var postingTracer = otel.Tracer("models/posting")

// buildLedgerRows derives the balanced double entry for a transaction. Line
// items post opposite the main account unless their credited flag flips them
// back; vat posts a row of its own on the line item's side; the main account
// takes one aggregate row for the vat-inclusive net total. Counterpart rows
// convert to functional currency at the transaction's rate, rounded per row;
// the aggregate row carries their signed sum rather than its own conversion.
func buildLedgerRows(txn *Transaction) ([]Ledger, error) {
	mainSide := EntryTypeDebit
	if txn.isCredited() {
		mainSide = EntryTypeCredit
	}
	lineSide := mainSide.Opposite()

	toBase := func(amount decimal.Decimal) decimal.Decimal {
		return amount.Div(txn.ExchangeRate).Round(moneyPrecision)
	}
	row := func(side EntryType, amount decimal.Decimal, accountId int, lineItemId int, vatId int) Ledger {
		return Ledger{
			EntityId:      txn.EntityId,
			TransactionId: txn.ID,
			LineItemId:    lineItemId,
			VatId:         vatId,
			AccountId:     accountId,
			Folio:         txn.TransactionNo,
			PostDate:      txn.TransactionDate,
			EntryType:     side,
			Amount:        amount,
			BaseAmount:    toBase(amount),
			ExchangeRate:  txn.ExchangeRate,
			CurrencyId:    txn.CurrencyId,
		}
	}

	rows := make([]Ledger, 0, 2*len(txn.LineItems)+1)
	mainTotal := decimal.Zero
	mainBase := decimal.Zero

	for i := range txn.LineItems {
		item := &txn.LineItems[i]
		side := lineSide

		subTotal := item.SubTotal()
		if subTotal.IsNegative() {
			return nil, ErrNegativeAmount
		}
		itemBase := decimal.Zero
		if !subTotal.IsZero() {
			itemBase = itemBase.Add(toBase(subTotal))
		}
		if vatAmount := item.VatAmount(); !vatAmount.IsZero() {
			itemBase = itemBase.Add(toBase(vatAmount))
		}

		signedTotal := item.TotalAmount()
		if item.isCredited() {
			side = mainSide
			signedTotal = signedTotal.Neg()
			itemBase = itemBase.Neg()
		}

		if !subTotal.IsZero() {
			rows = append(rows, row(side, subTotal, item.AccountId, item.ID, 0))
		}
		if vatAmount := item.VatAmount(); !vatAmount.IsZero() {
			vatAccountId := item.vatAccountId
			if vatAccountId == 0 {
				vatAccountId = item.AccountId
			}
			rows = append(rows, row(side, vatAmount, vatAccountId, item.ID, item.VatId))
		}
		mainTotal = mainTotal.Add(signedTotal)
		mainBase = mainBase.Add(itemBase)
	}

	if mainTotal.IsZero() {
		return nil, ErrMissingLineItems
	}
	if mainTotal.IsNegative() {
		return nil, ErrNegativeAmount
	}

	// The aggregate's base amount is the signed sum of the already rounded
	// counterpart rows, keeping functional currency debits equal to credits.
	main := row(mainSide, mainTotal, txn.AccountId, 0, 0)
	main.BaseAmount = mainBase
	rows = append(rows, main)
	return rows, nil
}

// PostTransaction writes the transaction's double entry to the ledger. Posting
// is all or nothing and serialized per entity, so concurrent posts line up the
// hash chain without gaps.
func PostTransaction(ctx context.Context, id int) error {
	ctx, span := postingTracer.Start(ctx, "PostTransaction")
	defer span.End()

	logger := config.GetLogger()

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return ErrEntityRequired
	}

	txn, err := utils.FetchModel[Transaction](ctx, entityId, id, "LineItems")
	if err != nil {
		return err
	}
	if txn.isPosted() {
		return ErrAlreadyPosted
	}
	if len(txn.LineItems) == 0 {
		return ErrMissingLineItems
	}

	for i := range txn.LineItems {
		account, err := GetAccount(ctx, txn.LineItems[i].AccountId)
		if err != nil {
			return err
		}
		if err := validateLineItemAccount(txn.TransactionType, account.AccountType); err != nil {
			return err
		}
		if txn.LineItems[i].VatId > 0 {
			vat, err := GetVat(ctx, txn.LineItems[i].VatId)
			if err != nil {
				return err
			}
			txn.LineItems[i].vatAccountId = vat.AccountId
		}
	}

	if err := checkPeriodOpen(ctx, txn.TransactionDate); err != nil {
		return err
	}

	rows, err := buildLedgerRows(txn)
	if err != nil {
		return err
	}

	release, err := utils.EntityLock(ctx, entityId, "posting")
	if err != nil {
		return err
	}
	defer release()

	// GET_LOCK is connection scoped, so acquire, post and release all run on
	// the one connection. The lock outlives the transaction commit here,
	// which keeps the hash chain read serialized against other posters.
	db := config.GetDB()
	err = db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := AcquireEntityPostingLock(conn, entityId); err != nil {
			return err
		}
		defer ReleaseEntityPostingLock(conn, entityId)

		return conn.Transaction(func(tx *gorm.DB) error {
			// Claim the posted flag first. A concurrent post that won the
			// lock already flipped it, so zero rows affected means done.
			claim := tx.Model(&Transaction{}).
				Where("id = ? AND entity_id = ? AND is_posted = ?", txn.ID, entityId, false).
				Update("is_posted", true)
			if claim.Error != nil {
				return claim.Error
			}
			if claim.RowsAffected == 0 {
				return ErrAlreadyPosted
			}

			prevHash, err := lastLedgerHash(tx, entityId)
			if err != nil {
				return err
			}
			for i := range rows {
				rows[i].Hash = rows[i].chainHash(prevHash)
				if err := tx.Create(&rows[i]).Error; err != nil {
					config.LogError(logger, "models", "PostTransaction", "create ledger row", rows[i], err)
					return err
				}
				prevHash = rows[i].Hash
			}
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, ErrAlreadyPosted) {
			config.LogError(logger, "models", "PostTransaction", "post", txn.TransactionNo, err)
		}
		return err
	}
	return nil
}
