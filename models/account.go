package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is a chart-of-accounts node. Deletion goes through gorm's soft
// delete (the recycle bin); every read path sees only active rows.
type Account struct {
	ID          int            `gorm:"primary_key" json:"id"`
	EntityId    string         `gorm:"index;not null" json:"entity_id"`
	Name        string         `gorm:"index;size:100;not null" json:"name"`
	AccountType AccountType    `gorm:"index;size:32;not null" json:"account_type"`
	CurrencyId  int            `gorm:"index" json:"currency_id"`
	Code        string         `gorm:"index;size:100" json:"code"`
	Description string         `gorm:"type:text" json:"description"`
	IsActive    *bool          `gorm:"not null;default:true" json:"is_active"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a Account) GetEntityId() string {
	return a.EntityId
}

type NewAccount struct {
	Name        string      `json:"name" validate:"required"`
	AccountType AccountType `json:"account_type" validate:"required"`
	CurrencyId  int         `json:"currency_id"`
	Code        string      `json:"code"`
	Description string      `json:"description"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewAccount) validate(ctx context.Context, entityId string, id int) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if _, err := ParseAccountType(string(input.AccountType)); err != nil {
		return err
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Account](ctx, entityId, id); err != nil {
			return err
		}
	}
	// name
	if err := utils.ValidateUnique[Account](ctx, entityId, "name", input.Name, id); err != nil {
		return err
	}
	// code
	if input.Code != "" {
		if err := utils.ValidateUnique[Account](ctx, entityId, "code", input.Code, id); err != nil {
			return err
		}
	}
	if input.CurrencyId > 0 {
		if err := utils.ValidateResourceId[Currency](ctx, entityId, input.CurrencyId); err != nil {
			return errors.New("currency not found")
		}
	}
	return nil
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	if err := input.validate(ctx, entityId, 0); err != nil {
		return nil, err
	}

	account := Account{
		EntityId:    entityId,
		Name:        input.Name,
		AccountType: input.AccountType,
		CurrencyId:  input.CurrencyId,
		Code:        input.Code,
		Description: input.Description,
		IsActive:    newTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func UpdateAccount(ctx context.Context, id int, input *NewAccount) (*Account, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	if err := input.validate(ctx, entityId, id); err != nil {
		return nil, err
	}

	account, err := utils.FetchModel[Account](ctx, entityId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// account_type is immutable once the account has been posted against
	if input.AccountType != account.AccountType {
		var count int64
		if err := db.WithContext(ctx).Model(&Ledger{}).Where("account_id = ?", account.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("not allowed to change account type when ledger entries exist")
		}
	}

	err = db.WithContext(ctx).Model(&account).Updates(map[string]interface{}{
		"Name":        input.Name,
		"AccountType": input.AccountType,
		"Code":        input.Code,
		"Description": input.Description,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedis[Account](id); err != nil {
		return nil, err
	}

	return account, nil
}

// DeleteAccount recycles the account (soft delete). Accounts that have been
// posted against are never removed.
func DeleteAccount(ctx context.Context, id int) (*Account, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	db := config.GetDB()

	result, err := utils.FetchModel[Account](ctx, entityId, id)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&Ledger{}).
		Where("account_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this account has ledger entries")
	}
	if err := db.WithContext(ctx).Model(&Balance{}).
		Where("account_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this account has opening balances")
	}

	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedis[Account](id); err != nil {
		return nil, err
	}

	return result, nil
}

func GetAccount(ctx context.Context, id int) (*Account, error) {

	return GetResource[Account](ctx, id)
}

func GetAccounts(ctx context.Context, name *string, code *string) ([]*Account, error) {

	db := config.GetDB()
	var results []*Account

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}

	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if code != nil && len(*code) > 0 {
		dbCtx = dbCtx.Where("code LIKE ?", "%"+*code+"%")
	}
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// OpeningBalance is the account's functional-currency opening balance for the
// reporting year, debit positive.
func (a *Account) OpeningBalance(ctx context.Context, year int) (decimal.Decimal, error) {
	db := config.GetDB()

	var row struct {
		Total decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&Balance{}).
		Select(`COALESCE(SUM(CASE WHEN balance_type = 'D' THEN amount / exchange_rate ELSE -amount / exchange_rate END), 0) AS total`).
		Where("entity_id = ? AND account_id = ? AND year = ?", a.EntityId, a.ID, year).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// movement sums posted ledger rows for the account over [from, to] in
// functional currency, debit positive. A nil bound leaves that side open.
func (a *Account) movement(ctx context.Context, from *time.Time, to *time.Time) (decimal.Decimal, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Model(&Ledger{}).
		Select(`COALESCE(SUM(CASE WHEN entry_type = 'D' THEN base_amount ELSE -base_amount END), 0) AS total`).
		Where("entity_id = ? AND account_id = ?", a.EntityId, a.ID)
	if from != nil {
		dbCtx = dbCtx.Where("post_date >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("post_date <= ?", *to)
	}

	var row struct {
		Total decimal.Decimal
	}
	if err := dbCtx.Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// ClosingBalance is the year's opening balance plus posted movement from the
// fiscal year start to endDate, functional currency, debit positive. Prior
// years are folded into the opening balance at year-end closing.
func (a *Account) ClosingBalance(ctx context.Context, endDate time.Time) (decimal.Decimal, error) {
	cfg := config.GetIFRS()
	year := YearOf(endDate, cfg)
	opening, err := a.OpeningBalance(ctx, year)
	if err != nil {
		return decimal.Zero, err
	}
	from := YearStart(year, cfg)
	moved, err := a.movement(ctx, &from, &endDate)
	if err != nil {
		return decimal.Zero, err
	}
	return opening.Add(moved), nil
}
