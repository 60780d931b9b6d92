package models

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"gorm.io/gorm"
)

// IdempotencyKey makes command resubmission safe: the first caller inserts a
// STARTED row, later callers hit the unique index and read the recorded
// outcome instead of re-executing.
type IdempotencyKey struct {
	ID          int               `gorm:"primary_key" json:"id"`
	EntityId    string            `gorm:"size:64;index:idx_idempotency_entity_key,unique;not null" json:"entity_id"`
	Key         string            `gorm:"size:128;index:idx_idempotency_entity_key,unique;not null" json:"key"`
	Operation   string            `gorm:"size:64;not null" json:"operation"`
	Status      IdempotencyStatus `gorm:"type:enum('STARTED','SUCCEEDED','FAILED');default:'STARTED'" json:"status"`
	ResultId    *int              `json:"result_id"`
	FailureNote string            `gorm:"type:text" json:"failure_note"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (k *IdempotencyKey) GetEntityId() string {
	return k.EntityId
}

func (k *IdempotencyKey) GetId() int {
	return k.ID
}

// ErrIdempotencyConflict signals the key row already exists; the caller
// should load it and act on the recorded status.
var ErrIdempotencyConflict = errors.New("idempotency key already claimed")

const mysqlDuplicateEntryCode = 1062

// ClaimIdempotencyKey inserts the STARTED row. A duplicate-key error from
// MySQL is translated to ErrIdempotencyConflict.
func ClaimIdempotencyKey(ctx context.Context, tx *gorm.DB, entityId string, key string, operation string) (*IdempotencyKey, error) {
	row := &IdempotencyKey{
		EntityId:  entityId,
		Key:       key,
		Operation: operation,
		Status:    IdempotencyStatusStarted,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntryCode {
			return nil, ErrIdempotencyConflict
		}
		return nil, err
	}
	return row, nil
}

// LookupIdempotencyKey loads the recorded outcome for a key, nil when absent.
func LookupIdempotencyKey(ctx context.Context, entityId string, key string, operation string) (*IdempotencyKey, error) {
	db := config.GetDB()
	var row IdempotencyKey
	err := db.WithContext(ctx).
		Where("entity_id = ? AND `key` = ? AND operation = ?", entityId, key, operation).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// MarkIdempotencySucceeded records the outcome inside the same transaction
// that performed the work.
func MarkIdempotencySucceeded(ctx context.Context, tx *gorm.DB, row *IdempotencyKey, resultId int) error {
	return tx.WithContext(ctx).Model(row).Updates(map[string]interface{}{
		"status":    IdempotencyStatusSucceeded,
		"result_id": resultId,
	}).Error
}

// MarkIdempotencyFailed releases the key after a failed attempt so a later
// retry can claim it again.
func MarkIdempotencyFailed(ctx context.Context, entityId string, key string, operation string, failureNote string) {
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&IdempotencyKey{}).
		Where("entity_id = ? AND `key` = ? AND operation = ?", entityId, key, operation).
		Updates(map[string]interface{}{
			"status":       IdempotencyStatusFailed,
			"failure_note": failureNote,
		}).Error
	if err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "models", "MarkIdempotencyFailed", "updating key "+key, nil, err)
	}
}
