package utils

import (
	"context"
	"errors"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PeriodGuarded models carry their accounting date and can tell whether the
// period they belong to still accepts mutations.
type PeriodGuarded interface {
	CheckPeriodOpen(context.Context) error
}

/* DB fetching */

// fetch model from db
// (ctx's entity_id is used in query's WHERE, may return RecordNotFound)
func FetchModel[T any](ctx context.Context, entityId string, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		return nil, ErrorRecordNotFound
	}
	return &result, nil
}

// fetch model and check that its accounting period is still open
func FetchModelForChange[T any](ctx context.Context, entityId string, id int, associations ...string) (*T, error) {
	result, err := FetchModel[T](ctx, entityId, id, associations...)
	if err != nil {
		return nil, err
	}
	if guarded, ok := any(result).(PeriodGuarded); ok {
		if err := guarded.CheckPeriodOpen(ctx); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// fetch model inside the caller's transaction with a FOR UPDATE row lock, so
// a phase guard re-checked on the result holds until commit
func FetchModelForUpdate[T any](ctx context.Context, tx *gorm.DB, entityId string, id int) (*T, error) {
	var result T
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("entity_id = ?", entityId).
		First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models from db
// (ctx's entity_id is used in query's WHERE)
func FetchAllModels[T any](ctx context.Context, entityId string, associations ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("entity_id = ?", entityId)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	err := dbCtx.Find(&results).Error
	if err != nil {
		return nil, ErrorRecordNotFound
	}
	return results, nil
}
