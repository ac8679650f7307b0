package postgresengine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/alexandrebha/cybook/circulation"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateForeignKeyViolation  = "23503"
)

// classifyStoreError maps a driver error onto the circulation sentinels.
// The original error stays in the chain for errors.As.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errors.Join(circulation.ErrNotFound, err)
	}

	switch sqlState(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return errors.Join(circulation.ErrConcurrencyConflict, err)

	case sqlStateForeignKeyViolation:
		return errors.Join(circulation.ErrNotFound, err)
	}

	return errors.Join(circulation.ErrStoreUnavailable, err)
}

// sqlState extracts the SQLSTATE code from pgx and lib/pq errors, "" for anything else.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

// errorType returns a low-cardinality label for metrics and spans.
func errorType(err error) string {
	switch {
	case errors.Is(err, circulation.ErrConcurrencyConflict):
		return errorTypeConcurrencyConflict
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeTimeout
	case errors.Is(err, circulation.ErrNotFound):
		return errorTypeNotFound
	case errors.Is(err, circulation.ErrOutOfStock):
		return errorTypeOutOfStock
	case errors.Is(err, circulation.ErrLimitExceeded):
		return errorTypeLimitExceeded
	case errors.Is(err, circulation.ErrNoActiveLoan):
		return errorTypeNoActiveLoan
	case errors.Is(err, circulation.ErrInventoryInconsistent):
		return errorTypeInventoryInconsistent
	case errors.Is(err, circulation.ErrInvalidArgument):
		return errorTypeInvalidArgument
	case errors.Is(err, circulation.ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	case errors.Is(err, circulation.ErrScanningDBRowFailed):
		return errorTypeRowScan
	default:
		return errorTypeDatabase
	}
}

// isDomainRejection reports whether err is an expected business outcome rather than a store failure.
func isDomainRejection(err error) bool {
	return errors.Is(err, circulation.ErrNotFound) ||
		errors.Is(err, circulation.ErrOutOfStock) ||
		errors.Is(err, circulation.ErrLimitExceeded) ||
		errors.Is(err, circulation.ErrNoActiveLoan) ||
		errors.Is(err, circulation.ErrInvalidArgument) ||
		errors.Is(err, circulation.ErrValidation) ||
		errors.Is(err, circulation.ErrMetadataUnavailable)
}
