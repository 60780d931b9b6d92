package utils

import (
	"context"
	"errors"
	"reflect"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
)

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
// entity_id can be blank for internal ops
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
