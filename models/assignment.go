package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	clearedTypeTransaction = "Transaction"
	clearedTypeBalance     = "Balance"
)

// Assignment applies part of a posted receipt, payment, note or journal entry
// against an outstanding document. Amounts are in the entity's functional
// currency.
type Assignment struct {
	ID            int             `gorm:"primary_key" json:"id"`
	EntityId      string          `gorm:"index;not null" json:"entity_id"`
	TransactionId int             `gorm:"index;not null" json:"transaction_id"`
	ClearedId     int             `gorm:"index;not null" json:"cleared_id"`
	ClearedType   string          `gorm:"size:20;not null" json:"cleared_type"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a Assignment) GetEntityId() string {
	return a.EntityId
}

type NewAssignment struct {
	TransactionId int             `json:"transaction_id" validate:"required"`
	ClearedId     int             `json:"cleared_id" validate:"required"`
	ClearedType   string          `json:"cleared_type"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
}

// ClearedAmountFor sums assignments against a document in functional currency.
func ClearedAmountFor(ctx context.Context, clearedType string, clearedId int) (decimal.Decimal, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return decimal.Zero, ErrEntityRequired
	}

	db := config.GetDB()
	var row struct {
		Total decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&Assignment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("entity_id = ? AND cleared_type = ? AND cleared_id = ?", entityId, clearedType, clearedId).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// assignedAmount sums what the clearing transaction has already given out.
func assignedAmount(ctx context.Context, entityId string, transactionId int) (decimal.Decimal, error) {
	db := config.GetDB()
	var row struct {
		Total decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&Assignment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("entity_id = ? AND transaction_id = ?", entityId, transactionId).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// Assign clears part of an outstanding document with a posted assignable
// transaction. Over-clearance is rejected on both sides: the cleared document
// never goes below zero outstanding and the clearing transaction never gives
// out more than its own total. The check and the write run under the entity
// posting lock so concurrent assignments cannot oversubscribe.
func Assign(ctx context.Context, input *NewAssignment) (*Assignment, error) {
	ctx, span := postingTracer.Start(ctx, "Assign")
	defer span.End()

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, ErrNegativeAmount
	}
	clearedType := input.ClearedType
	if clearedType == "" {
		clearedType = clearedTypeTransaction
	}

	clearing, err := utils.FetchModel[Transaction](ctx, entityId, input.TransactionId, "LineItems")
	if err != nil {
		return nil, err
	}
	if !clearing.isPosted() {
		return nil, ErrUnpostedTransaction
	}
	if !clearing.TransactionType.IsAssignable() {
		return nil, ErrUnassignableTransaction
	}

	var cleared ClearableDocument
	switch clearedType {
	case clearedTypeTransaction:
		if input.ClearedId == clearing.ID {
			return nil, ErrSelfClearance
		}
		doc, err := utils.FetchModel[Transaction](ctx, entityId, input.ClearedId, "LineItems")
		if err != nil {
			return nil, err
		}
		if !doc.isPosted() {
			return nil, ErrUnpostedTransaction
		}
		if !doc.TransactionType.IsClearable() {
			return nil, ErrUnclearableTransaction
		}
		cleared = doc
	case clearedTypeBalance:
		doc, err := utils.FetchModel[Balance](ctx, entityId, input.ClearedId)
		if err != nil {
			return nil, err
		}
		account, err := GetAccount(ctx, doc.AccountId)
		if err != nil {
			return nil, err
		}
		// Only receivable and payable exposure carries forward as clearable.
		if account.AccountType != AccountTypeReceivable && account.AccountType != AccountTypePayable {
			return nil, ErrUnclearableTransaction
		}
		cleared = doc
	default:
		return nil, ErrUnclearableTransaction
	}

	release, err := utils.EntityLock(ctx, entityId, "assignment")
	if err != nil {
		return nil, err
	}
	defer release()

	assignment := Assignment{
		EntityId:      entityId,
		TransactionId: clearing.ID,
		ClearedId:     input.ClearedId,
		ClearedType:   clearedType,
		Amount:        input.Amount,
	}

	// GET_LOCK is connection scoped, so the capacity checks and the write
	// acquire and release the lock on the one connection.
	db := config.GetDB()
	err = db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := AcquireEntityPostingLock(conn, entityId); err != nil {
			return err
		}
		defer ReleaseEntityPostingLock(conn, entityId)

		alreadyCleared, err := cleared.ClearedAmount(ctx)
		if err != nil {
			return err
		}
		outstanding := cleared.OriginalAmount().Sub(alreadyCleared)
		if input.Amount.GreaterThan(outstanding) {
			return OverAssignmentError{Outstanding: outstanding}
		}

		given, err := assignedAmount(ctx, entityId, clearing.ID)
		if err != nil {
			return err
		}
		available := clearing.OriginalAmount().Sub(given)
		if input.Amount.GreaterThan(available) {
			return InsufficientCapacityError{Available: available}
		}

		return conn.Create(&assignment).Error
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Unassign removes an assignment, reopening the cleared amount.
func Unassign(ctx context.Context, id int) (*Assignment, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	assignment, err := utils.FetchModel[Assignment](ctx, entityId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

// GetAssignments lists what a clearing transaction has been applied to.
func GetAssignments(ctx context.Context, transactionId int) ([]*Assignment, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	db := config.GetDB()
	var results []*Assignment
	err := db.WithContext(ctx).
		Where("entity_id = ? AND transaction_id = ?", entityId, transactionId).
		Order("id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
