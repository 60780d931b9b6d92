package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// Typed failures returned at the operation boundary. The engine never retries
// on its own; retry policy belongs to the caller.
var (
	ErrDuplicateCode               = errors.New("budget line code already exists")
	ErrInsufficientCredit          = errors.New("insufficient available credit")
	ErrPhaseOrder                  = errors.New("phase transition out of order")
	ErrUnbalancedEntries           = errors.New("selected entries do not balance")
	ErrClosingPrecondition         = errors.New("closing step precondition not met")
	ErrPeriodClosed                = errors.New("accounting period is closed")
	ErrClosingInProgress           = errors.New("a closing is already in progress for this period")
	ErrRevisionViolatesCommitments = errors.New("revision would leave engaged credits uncovered")
)

// ValidationError reports a missing or invalid required field on a command.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field string, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
