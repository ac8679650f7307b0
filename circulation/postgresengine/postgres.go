package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/circulation/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName   = "books"
	defaultUsersTableName   = "users"
	defaultLoansTableName   = "loans"
	defaultJournalTableName = "loan_journal"
	dialectPostgres         = "postgres"
	colID                   = "id"
	colStock                = "stock"
	colLastName             = "last_name"
	colFirstName            = "first_name"
	colEmail                = "email"
	colAddress              = "address"
	colPhone                = "phone"
	colUserID               = "user_id"
	colBookID               = "book_id"
	colLoanDate             = "loan_date"
	colDueDate              = "due_date"
	colReturned             = "returned"
	colSequenceNumber       = "sequence_number"
	colEntryType            = "entry_type"
	colOccurredAt           = "occurred_at"
	colPayload              = "payload"
	colMetadata             = "metadata"
	aliasCount              = "borrow_count"
	castJsonb               = "?::jsonb"
)

var dialect = goqu.Dialect(dialectPostgres)

// sqlBuilder is satisfied by goqu select, insert and update datasets.
type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

// Engine is the PostgreSQL-backed circulation ledger.
type Engine struct {
	db               adapters.DBAdapter
	booksTableName   string
	usersTableName   string
	loansTableName   string
	journalTableName string
	logger           circulation.Logger
	metricsCollector circulation.MetricsCollector
	tracingCollector circulation.TracingCollector
	contextualLogger circulation.ContextualLogger
}

// NewEngineFromPGXPool creates a new Engine using a pgx Pool with optional configuration.
func NewEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), options...)
}

// NewEngineFromPGXPoolAndReplica creates a new Engine with a primary and a replica pool.
// Reads run on the replica when the context carries circulation.EventualConsistency.
func NewEngineFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Engine, error) {
	if db == nil || replica == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional configuration.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options...)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, circulation.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options...)
}

func newEngine(db adapters.DBAdapter, options ...Option) (*Engine, error) {
	e := &Engine{
		db:               db,
		booksTableName:   defaultBooksTableName,
		usersTableName:   defaultUsersTableName,
		loansTableName:   defaultLoansTableName,
		journalTableName: defaultJournalTableName,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// WithinTx runs fn inside one READ COMMITTED transaction.
//
// The transaction commits if fn returns nil and rolls back if fn returns an error or panics.
// Errors returned by fn are passed through unchanged so that callers can test them with errors.Is.
// A commit failure is classified like any other store error, which makes a deadlock or
// serialization failure surface as circulation.ErrConcurrencyConflict.
func (e *Engine) WithinTx(ctx context.Context, fn circulation.TxFunc) error {
	obs, ctx := e.observe(ctx, operationTransaction)

	dbTx, beginErr := e.db.BeginTx(ctx)
	if beginErr != nil {
		err := classifyStoreError(beginErr)
		obs.failure(err)

		return err
	}

	committed := false
	defer func() {
		if !committed {
			e.rollback(ctx, dbTx)
		}
	}()

	if fnErr := fn(ctx, &ledgerTx{engine: e, tx: dbTx}); fnErr != nil {
		obs.failure(fnErr)
		return fnErr
	}

	if commitErr := dbTx.Commit(ctx); commitErr != nil {
		err := classifyStoreError(commitErr)
		obs.failure(err)

		return err
	}

	committed = true
	obs.success()

	return nil
}

// rollback rolls the transaction back even if ctx is already canceled.
func (e *Engine) rollback(ctx context.Context, dbTx adapters.DBTx) {
	if rollbackErr := dbTx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
		e.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
	}
}

// render turns a goqu dataset into SQL with $n placeholders and its arguments.
func (e *Engine) render(ctx context.Context, action string, builder sqlBuilder) (string, []any, error) {
	sqlQuery, args, toSQLErr := builder.ToSQL()
	if toSQLErr != nil {
		e.logErr(ctx, logMsgBuildQueryFailed, toSQLErr, logAttrAction, action)
		return "", nil, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

// execute runs a statement and returns the number of affected rows.
func (e *Engine) execute(ctx context.Context, q adapters.Querier, action string, builder sqlBuilder) (int64, error) {
	sqlQuery, args, renderErr := e.render(ctx, action, builder)
	if renderErr != nil {
		return 0, renderErr
	}

	start := time.Now()
	result, execErr := q.Exec(ctx, sqlQuery, args...)
	e.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		err := classifyStoreError(execErr)
		e.logStoreErr(ctx, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)

		return 0, err
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		e.logErr(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(circulation.ErrStoreUnavailable, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// rowScanner reads the current row of rows into a T.
type rowScanner[T any] func(rows adapters.DBRows) (T, error)

// collect runs a query and scans all rows. Rows are always closed.
func collect[T any](
	ctx context.Context,
	e *Engine,
	q adapters.Querier,
	action string,
	builder sqlBuilder,
	scan rowScanner[T],
) ([]T, error) {

	sqlQuery, args, renderErr := e.render(ctx, action, builder)
	if renderErr != nil {
		return nil, renderErr
	}

	start := time.Now()
	rows, queryErr := q.Query(ctx, sqlQuery, args...)
	e.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		err := classifyStoreError(queryErr)
		e.logStoreErr(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)

		return nil, err
	}
	defer e.closeRows(ctx, rows)

	result := make([]T, 0)

	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			e.logErr(ctx, logMsgScanRowFailed, scanErr, logAttrAction, action)
			return nil, errors.Join(circulation.ErrStoreUnavailable, circulation.ErrScanningDBRowFailed, scanErr)
		}

		result = append(result, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		err := classifyStoreError(rowsErr)
		e.logStoreErr(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)

		return nil, err
	}

	return result, nil
}

// first runs a query and returns its first row, or notFound if there is none.
func first[T any](
	ctx context.Context,
	e *Engine,
	q adapters.Querier,
	action string,
	builder sqlBuilder,
	scan rowScanner[T],
	notFound error,
) (T, error) {

	var empty T

	items, err := collect(ctx, e, q, action, builder, scan)
	if err != nil {
		return empty, err
	}

	if len(items) == 0 {
		return empty, notFound
	}

	return items[0], nil
}

// closeRows safely closes database rows and logs any errors.
func (e *Engine) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		e.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func scanCount(rows adapters.DBRows) (int, error) {
	var count int64
	err := rows.Scan(&count)

	return int(count), err
}
