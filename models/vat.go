package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// Vat is a named tax rate. Collected VAT posts to the rate's control account.
type Vat struct {
	ID        int             `gorm:"primary_key" json:"id"`
	EntityId  string          `gorm:"index;not null" json:"entity_id"`
	Code      string          `gorm:"size:10;not null" json:"code"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Rate      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	AccountId int             `gorm:"index" json:"account_id"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v Vat) GetEntityId() string {
	return v.EntityId
}

type NewVat struct {
	Code      string          `json:"code" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Rate      decimal.Decimal `json:"rate"`
	AccountId int             `json:"account_id"`
}

func CreateVat(ctx context.Context, input *NewVat) (*Vat, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Rate.IsNegative() {
		return nil, errors.New("vat rate cannot be negative")
	}
	if err := utils.ValidateUnique[Vat](ctx, entityId, "code", input.Code, 0); err != nil {
		return nil, err
	}
	// a nonzero rate needs a control account to post the tax to
	if !input.Rate.IsZero() {
		if input.AccountId <= 0 {
			return nil, MissingAccountError{Operation: "Vat"}
		}
		account, err := GetAccount(ctx, input.AccountId)
		if err != nil {
			return nil, err
		}
		if account.AccountType != AccountTypeControl {
			return nil, InvalidAccountTypeError{Allowed: []AccountType{AccountTypeControl}}
		}
	}

	vat := Vat{
		EntityId:  entityId,
		Code:      input.Code,
		Name:      input.Name,
		Rate:      input.Rate,
		AccountId: input.AccountId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&vat).Error; err != nil {
		return nil, err
	}
	return &vat, nil
}

func GetVat(ctx context.Context, id int) (*Vat, error) {

	return GetResource[Vat](ctx, id)
}

func GetVats(ctx context.Context) ([]*Vat, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}
	return utils.FetchAllModels[Vat](ctx, entityId)
}
