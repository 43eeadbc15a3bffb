package utils

import (
	"context"
	"errors"
	"reflect"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs the `validate` tag rules on an input struct and folds
// the first violation into a plain error.
func ValidateStruct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errors.New("invalid input: " + verrs[0].Namespace() + " failed " + verrs[0].Tag())
	}
	return err
}

// check if id exists, using ctx's entity_id in WHERE, return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, entityId string, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, entityId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// check if ALL ids exist, using ctx's entity_id in WHERE, return RecordNotFound error
func ValidateResourcesId[M any, ID comparable](ctx context.Context, entityId string, ids []ID) error {
	unqIds := UniqueSlice(ids)

	count, err := ResourceCountWhere[M](ctx, entityId, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, entityId string, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, entityId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, entityId, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate " + column)
	}
	return nil
}

// count records, using WHERE entity_id = ? AND $condition
// entity_id can be blank for maintenance tools
func ResourceCountWhere[T any](ctx context.Context, entityId string, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if entityId != "" {
		dbCtx = dbCtx.Where("entity_id = ?", entityId)
	}
	dbCtx = dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
