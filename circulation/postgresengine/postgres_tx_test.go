package postgresengine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/circulation/postgresengine/internal/adapters"
)

// fakeDB is a scripted adapters.DBAdapter for tests that must not depend on a running database.
type fakeDB struct {
	beginErr  error
	commitErr error
	execRows  int64
	queryRows [][]any
	tx        *fakeTx
}

func (f *fakeDB) Query(_ context.Context, _ string, _ ...any) (adapters.DBRows, error) {
	return &fakeRows{rows: f.queryRows, index: -1}, nil
}

func (f *fakeDB) Exec(_ context.Context, _ string, _ ...any) (adapters.DBResult, error) {
	return fakeResult(f.execRows), nil
}

func (f *fakeDB) BeginTx(_ context.Context) (adapters.DBTx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}

	f.tx = &fakeTx{db: f}

	return f.tx, nil
}

type fakeTx struct {
	db         *fakeDB
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Query(ctx context.Context, q string, args ...any) (adapters.DBRows, error) {
	return f.db.Query(ctx, q, args...)
}

func (f *fakeTx) Exec(ctx context.Context, q string, args ...any) (adapters.DBResult, error) {
	return f.db.Exec(ctx, q, args...)
}

func (f *fakeTx) Commit(_ context.Context) error {
	if f.db.commitErr != nil {
		return f.db.commitErr
	}

	f.committed = true

	return nil
}

func (f *fakeTx) Rollback(_ context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeRows struct {
	rows  [][]any
	index int
}

func (f *fakeRows) Next() bool {
	f.index++
	return f.index < len(f.rows)
}

func (f *fakeRows) Scan(dest ...any) error {
	for i, value := range f.rows[f.index] {
		switch d := dest[i].(type) {
		case *string:
			*d = value.(string)
		case *int64:
			*d = value.(int64)
		default:
			return errors.New("unsupported scan destination")
		}
	}

	return nil
}

func (f *fakeRows) Err() error   { return nil }
func (f *fakeRows) Close() error { return nil }

type fakeResult int64

func (f fakeResult) RowsAffected() (int64, error) { return int64(f), nil }

// counterSpy records counter increments.
type counterSpy struct {
	mu       sync.Mutex
	counters map[string]int
}

func (c *counterSpy) RecordDuration(string, time.Duration, map[string]string) {}
func (c *counterSpy) RecordValue(string, float64, map[string]string)         {}
func (c *counterSpy) IncrementCounter(metric string, _ map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counters == nil {
		c.counters = map[string]int{}
	}

	c.counters[metric]++
}

func (c *counterSpy) count(metric string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counters[metric]
}

func newFakeEngine(db *fakeDB, options ...Option) *Engine {
	e, err := newEngine(db, options...)
	if err != nil {
		panic(err)
	}

	return e
}

func Test_WithinTx_Commits_WhenFnSucceeds(t *testing.T) {
	// arrange
	db := &fakeDB{}
	e := newFakeEngine(db)

	// act
	err := e.WithinTx(context.Background(), func(context.Context, circulation.LedgerTx) error { return nil })

	// assert
	require.NoError(t, err)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
}

func Test_WithinTx_RollsBack_AndReturnsFnError(t *testing.T) {
	// arrange
	db := &fakeDB{}
	e := newFakeEngine(db)

	// act
	err := e.WithinTx(context.Background(), func(context.Context, circulation.LedgerTx) error {
		return circulation.ErrOutOfStock
	})

	// assert
	assert.ErrorIs(t, err, circulation.ErrOutOfStock)
	assert.False(t, db.tx.committed)
	assert.True(t, db.tx.rolledBack)
}

func Test_WithinTx_RollsBack_OnPanic(t *testing.T) {
	db := &fakeDB{}
	e := newFakeEngine(db)

	assert.Panics(t, func() {
		_ = e.WithinTx(context.Background(), func(context.Context, circulation.LedgerTx) error {
			panic("boom")
		})
	})

	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}

func Test_WithinTx_ClassifiesCommitConflicts(t *testing.T) {
	// arrange
	metrics := &counterSpy{}
	db := &fakeDB{commitErr: &pgconn.PgError{Code: sqlStateSerializationFailure}}
	e := newFakeEngine(db, WithMetrics(metrics))

	// act
	err := e.WithinTx(context.Background(), func(context.Context, circulation.LedgerTx) error { return nil })

	// assert
	assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)
	assert.True(t, db.tx.rolledBack)
	assert.Equal(t, 1, metrics.count(metricConcurrencyConflicts))
	assert.Equal(t, 0, metrics.count(metricDatabaseErrors))
}

func Test_WithinTx_BeginFailure_IsStoreUnavailable(t *testing.T) {
	// arrange
	metrics := &counterSpy{}
	db := &fakeDB{beginErr: errors.New("connection refused")}
	e := newFakeEngine(db, WithMetrics(metrics))
	called := false

	// act
	err := e.WithinTx(context.Background(), func(context.Context, circulation.LedgerTx) error {
		called = true
		return nil
	})

	// assert
	assert.ErrorIs(t, err, circulation.ErrStoreUnavailable)
	assert.False(t, called)
	assert.Equal(t, 1, metrics.count(metricDatabaseErrors))
}

func Test_Decrement_TellsOutOfStockFromUnknownBook(t *testing.T) {
	tests := []struct {
		name      string
		execRows  int64
		queryRows [][]any
		expected  error
	}{
		{name: "copy available", execRows: 1, expected: nil},
		{name: "empty shelf", execRows: 0, queryRows: [][]any{{"b1", int64(0)}}, expected: circulation.ErrOutOfStock},
		{name: "unknown book", execRows: 0, queryRows: nil, expected: circulation.ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := &fakeDB{execRows: tc.execRows, queryRows: tc.queryRows}
			e := newFakeEngine(db)

			err := e.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
				return tx.Decrement(ctx, "b1")
			})

			if tc.expected == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func Test_MarkReturned_SecondTime_IsNoActiveLoan(t *testing.T) {
	db := &fakeDB{execRows: 0}
	e := newFakeEngine(db)

	err := e.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
		return tx.MarkReturned(ctx, 1)
	})

	assert.ErrorIs(t, err, circulation.ErrNoActiveLoan)
}

func Test_Increment_UnknownBook_IsNotFound(t *testing.T) {
	db := &fakeDB{execRows: 0}
	e := newFakeEngine(db)

	err := e.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
		return tx.Increment(ctx, "ghost")
	})

	assert.ErrorIs(t, err, circulation.ErrNotFound)
}

func Test_TopBorrowed_RejectsNonPositiveArguments(t *testing.T) {
	e := newFakeEngine(&fakeDB{})

	_, err := e.TopBorrowed(context.Background(), 0, 3, time.Now())
	assert.ErrorIs(t, err, circulation.ErrInvalidArgument)

	_, err = e.TopBorrowed(context.Background(), 30, 0, time.Now())
	assert.ErrorIs(t, err, circulation.ErrInvalidArgument)
}

func Test_TopBorrowed_ScansRows(t *testing.T) {
	db := &fakeDB{queryRows: [][]any{{"b1", int64(3)}, {"b2", int64(1)}}}
	e := newFakeEngine(db)

	ranking, err := e.TopBorrowed(context.Background(), 30, 3, time.Now())

	require.NoError(t, err)
	assert.Equal(t, []circulation.BorrowCount{{BookID: "b1", Count: 3}, {BookID: "b2", Count: 1}}, ranking)
}

func Test_AppendJournal_RejectsInvalidJSON(t *testing.T) {
	e := newFakeEngine(&fakeDB{execRows: 1})

	err := e.WithinTx(context.Background(), func(ctx context.Context, tx circulation.LedgerTx) error {
		return tx.AppendJournal(ctx, circulation.JournalEntry{EntryType: "X", PayloadJSON: []byte("{"), MetadataJSON: []byte("{}")})
	})

	assert.ErrorIs(t, err, circulation.ErrInvalidArgument)
	assert.ErrorIs(t, err, circulation.ErrInvalidPayloadJSON)
}
