package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/alexandrebha/cybook/circulation"
)

func Test_ClassifyStoreError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "pgx deadlock", err: &pgconn.PgError{Code: "40P01"}, expected: circulation.ErrConcurrencyConflict},
		{name: "pgx serialization failure", err: &pgconn.PgError{Code: "40001"}, expected: circulation.ErrConcurrencyConflict},
		{name: "lib/pq deadlock", err: &pq.Error{Code: "40P01"}, expected: circulation.ErrConcurrencyConflict},
		{name: "wrapped lib/pq serialization failure", err: fmt.Errorf("commit: %w", &pq.Error{Code: "40001"}), expected: circulation.ErrConcurrencyConflict},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, expected: circulation.ErrNotFound},
		{name: "pgx no rows", err: pgx.ErrNoRows, expected: circulation.ErrNotFound},
		{name: "sql no rows", err: sql.ErrNoRows, expected: circulation.ErrNotFound},
		{name: "check violation", err: &pgconn.PgError{Code: "23514"}, expected: circulation.ErrStoreUnavailable},
		{name: "connection failure", err: errors.New("connection refused"), expected: circulation.ErrStoreUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			classified := classifyStoreError(tc.err)

			assert.ErrorIs(t, classified, tc.expected)
			assert.ErrorIs(t, classified, tc.err, "the cause must stay in the chain")
		})
	}
}

func Test_ClassifyStoreError_Nil(t *testing.T) {
	assert.NoError(t, classifyStoreError(nil))
}

func Test_ClassifyStoreError_KeepsContextErrors(t *testing.T) {
	classified := classifyStoreError(fmt.Errorf("query: %w", context.DeadlineExceeded))

	assert.ErrorIs(t, classified, circulation.ErrStoreUnavailable)
	assert.ErrorIs(t, classified, context.DeadlineExceeded)
	assert.Equal(t, errorTypeTimeout, errorType(classified))
}

func Test_IsDomainRejection(t *testing.T) {
	assert.True(t, isDomainRejection(circulation.ErrOutOfStock))
	assert.True(t, isDomainRejection(errors.Join(circulation.ErrNotFound, sql.ErrNoRows)))
	assert.False(t, isDomainRejection(errors.Join(circulation.ErrStoreUnavailable, errors.New("boom"))))
	assert.False(t, isDomainRejection(circulation.ErrConcurrencyConflict))
}
