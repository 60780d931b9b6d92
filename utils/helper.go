package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/shopspring/decimal"
)

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}

	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}

	return dec, nil
}

// ObtainEntityLock acquires a cross-instance lock scoped to the entity.
// The caller must Release the returned lock; ErrClosingInProgress is NOT
// decided here, callers translate ErrNotObtained to their own failure.
func ObtainEntityLock(ctx context.Context, entityId string, lockType string, ttl time.Duration) (*redislock.Lock, error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		config.LogError(logger, "helper.go", "ObtainEntityLock", "Redis lock not initialized", entityId, errors.New("redis lock is nil"))
		return nil, errors.New("service not ready (redis lock not initialized)")
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, entityId)
	lock, err := locker.Obtain(ctx, lockKey, ttl, nil)
	if err != nil {
		if err == redislock.ErrNotObtained {
			return nil, redislock.ErrNotObtained
		}
		config.LogError(logger, "helper.go", "ObtainEntityLock", "Error obtaining entity lock", entityId, err)
		return nil, err
	}
	return lock, nil
}
