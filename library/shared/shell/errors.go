package shell

import (
	"context"
	"errors"

	"github.com/alexandrebha/cybook/circulation"
)

const (
	errorTypeNone                = "none"
	errorTypeConcurrencyConflict = "concurrency_conflict"
	errorTypeCanceled            = "context_canceled"
	errorTypeDeadlineExceeded    = "context_deadline_exceeded"
	errorTypeRejected            = "rejected"
	errorTypeOther               = "other"
)

// IsCancellationError reports whether err stems from a canceled context.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError reports whether err stems from an exceeded context deadline.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError reports whether err is a deadlock or serialization failure of the store.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, circulation.ErrConcurrencyConflict)
}

// IsDomainRejection reports whether err is an expected business outcome (a rule said no),
// as opposed to a technical failure.
func IsDomainRejection(err error) bool {
	for _, rejection := range []error{
		circulation.ErrNotFound,
		circulation.ErrOutOfStock,
		circulation.ErrLimitExceeded,
		circulation.ErrMetadataUnavailable,
		circulation.ErrNoActiveLoan,
		circulation.ErrInvalidArgument,
		circulation.ErrValidation,
	} {
		if errors.Is(err, rejection) {
			return true
		}
	}

	return false
}

// ErrorType classifies err for metric labels.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return errorTypeNone
	case IsConcurrencyConflictError(err):
		return errorTypeConcurrencyConflict
	case IsCancellationError(err):
		return errorTypeCanceled
	case IsTimeoutError(err):
		return errorTypeDeadlineExceeded
	case IsDomainRejection(err):
		return errorTypeRejected
	default:
		return errorTypeOther
	}
}
