package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

type Currency struct {
	ID        int       `gorm:"primary_key" json:"id"`
	EntityId  string    `gorm:"index;not null" json:"entity_id"`
	Symbol    string    `gorm:"index;size:3;not null" json:"symbol"`
	Name      string    `gorm:"index;size:100;not null" json:"name"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c Currency) GetEntityId() string {
	return c.EntityId
}

type NewCurrency struct {
	Symbol string `json:"symbol" validate:"required,len=3"`
	Name   string `json:"name" validate:"required"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewCurrency) validate(ctx context.Context, entityId string, id int) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Currency](ctx, entityId, id); err != nil {
			return err
		}
	}
	// name
	if err := utils.ValidateUnique[Currency](ctx, entityId, "name", input.Name, id); err != nil {
		return err
	}
	// symbol
	if err := utils.ValidateUnique[Currency](ctx, entityId, "symbol", input.Symbol, id); err != nil {
		return err
	}
	return nil
}

func CreateCurrency(ctx context.Context, input *NewCurrency) (*Currency, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	if err := input.validate(ctx, entityId, 0); err != nil {
		return nil, err
	}

	currency := Currency{
		EntityId: entityId,
		Symbol:   input.Symbol,
		Name:     input.Name,
		IsActive: newTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&currency).Error
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

func UpdateCurrency(ctx context.Context, id int, input *NewCurrency) (*Currency, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	if err := input.validate(ctx, entityId, id); err != nil {
		return nil, err
	}

	currency, err := utils.FetchModel[Currency](ctx, entityId, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&currency).Updates(map[string]interface{}{
		"Name":   input.Name,
		"Symbol": input.Symbol,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedis[Currency](id); err != nil {
		return nil, err
	}

	return currency, nil
}

func DeleteCurrency(ctx context.Context, id int) (*Currency, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	result, err := utils.FetchModel[Currency](ctx, entityId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// check if the currency is used
	var count int64
	if err := db.WithContext(ctx).Model(&Account{}).
		Where("currency_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("currency has been used in account")
	}
	if err := db.WithContext(ctx).Model(&Transaction{}).
		Where("currency_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("currency has been used in transaction")
	}
	if err := db.WithContext(ctx).Model(&ExchangeRate{}).
		Where("currency_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("currency has exchange rates")
	}

	// db action
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedis[Currency](id); err != nil {
		return nil, err
	}

	return result, nil
}

func GetCurrency(ctx context.Context, id int) (*Currency, error) {

	return GetResource[Currency](ctx, id)
}

func GetCurrencies(ctx context.Context) ([]*Currency, error) {
	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}
	return utils.FetchAllModels[Currency](ctx, entityId)
}

func newTrue() *bool {
	b := true
	return &b
}

func newFalse() *bool {
	b := false
	return &b
}
