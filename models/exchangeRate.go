package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// ExchangeRate converts a currency into the entity's functional currency.
// Amounts recorded in the currency are divided by Rate to reach
// functional-currency values.
type ExchangeRate struct {
	ID         int             `gorm:"primary_key" json:"id"`
	EntityId   string          `gorm:"index;not null" json:"entity_id"`
	CurrencyId int             `gorm:"index;not null" json:"currency_id"`
	Rate       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate"`
	ValidFrom  time.Time       `gorm:"index;not null" json:"valid_from"`
	ValidTo    *time.Time      `gorm:"index" json:"valid_to"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r ExchangeRate) GetEntityId() string {
	return r.EntityId
}

type NewExchangeRate struct {
	CurrencyId int             `json:"currency_id" validate:"required"`
	Rate       decimal.Decimal `json:"rate" validate:"required"`
	ValidFrom  time.Time       `json:"valid_from" validate:"required"`
	ValidTo    *time.Time      `json:"valid_to"`
}

func (input *NewExchangeRate) validate(ctx context.Context, entityId string) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if !input.Rate.IsPositive() {
		return errors.New("exchange rate must be positive")
	}
	if input.ValidTo != nil && input.ValidTo.Before(input.ValidFrom) {
		return errors.New("valid_to cannot be before valid_from")
	}
	if err := utils.ValidateResourceId[Currency](ctx, entityId, input.CurrencyId); err != nil {
		return errors.New("currency not found")
	}
	return nil
}

func CreateExchangeRate(ctx context.Context, input *NewExchangeRate) (*ExchangeRate, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	if err := input.validate(ctx, entityId); err != nil {
		return nil, err
	}

	rate := ExchangeRate{
		EntityId:   entityId,
		CurrencyId: input.CurrencyId,
		Rate:       input.Rate,
		ValidFrom:  input.ValidFrom,
		ValidTo:    input.ValidTo,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// RateAsOf resolves the rate effective for the currency on the given date:
// the newest window whose valid_from is on or before the date and whose
// valid_to, when set, has not passed.
func RateAsOf(ctx context.Context, currencyId int, date time.Time) (*ExchangeRate, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	db := config.GetDB()
	var rate ExchangeRate
	err := db.WithContext(ctx).
		Where("entity_id = ? AND currency_id = ?", entityId, currencyId).
		Where("valid_from <= ?", date).
		Where("valid_to IS NULL OR valid_to >= ?", date).
		Order("valid_from DESC").
		First(&rate).Error
	if err != nil {
		return nil, ErrMissingExchangeRate
	}
	return &rate, nil
}

func GetExchangeRates(ctx context.Context, currencyId int) ([]*ExchangeRate, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	db := config.GetDB()
	var results []*ExchangeRate
	err := db.WithContext(ctx).
		Where("entity_id = ? AND currency_id = ?", entityId, currencyId).
		Order("valid_from DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
