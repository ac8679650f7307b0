package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/circulation/postgresengine"
	"github.com/alexandrebha/cybook/testutil/postgresengine/config"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

const connectTimeout = 5 * time.Second

// Wrapper abstracts over the connection types an engine can be built from.
type Wrapper interface {
	GetEngine() *postgresengine.Engine
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool   *pgxpool.Pool
	engine *postgresengine.Engine
}

// GetEngine returns the engine under test.
func (w *PGXPoolWrapper) GetEngine() *postgresengine.Engine { return w.engine }

// Close closes the pool.
func (w *PGXPoolWrapper) Close() { w.pool.Close() }

// SQLDBWrapper wraps sql.DB-based testing.
type SQLDBWrapper struct {
	db     *sql.DB
	engine *postgresengine.Engine
}

// GetEngine returns the engine under test.
func (w *SQLDBWrapper) GetEngine() *postgresengine.Engine { return w.engine }

// Close closes the database handle.
func (w *SQLDBWrapper) Close() { _ = w.db.Close() }

// SQLXWrapper wraps sqlx.DB-based testing.
type SQLXWrapper struct {
	db     *sqlx.DB
	engine *postgresengine.Engine
}

// GetEngine returns the engine under test.
func (w *SQLXWrapper) GetEngine() *postgresengine.Engine { return w.engine }

// Close closes the database handle.
func (w *SQLXWrapper) Close() { _ = w.db.Close() }

// CreateWrapperWithTestConfig creates the wrapper selected by ADAPTER_TYPE, creates the schema and empties all tables.
// The test is skipped if the test database is not reachable.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	wrapper, err := createWrapper(ctx, options...)
	if err != nil {
		t.Skipf("test database not reachable (%s): %v", config.PostgresTestDSN(), err)
	}

	require.NoError(t, wrapper.GetEngine().CreateTables(ctx), "error creating the schema")
	CleanUp(t, wrapper)

	t.Cleanup(wrapper.Close)

	return wrapper
}

// TryCreateEngine creates an engine with the adapter selected by ADAPTER_TYPE and returns the error.
// It panics for an unsupported adapter type.
func TryCreateEngine(t testing.TB, options ...postgresengine.Option) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	wrapper, err := createWrapper(ctx, options...)
	if wrapper != nil {
		wrapper.Close()
	}

	return err
}

func createWrapper(ctx context.Context, options ...postgresengine.Option) (Wrapper, error) {
	adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch adapterTypeFromEnv {
	case typePGXPool, "":
		pool, err := config.PostgresPGXPoolTest(ctx)
		if err != nil {
			return nil, err
		}

		engine, err := postgresengine.NewEngineFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, err
		}

		return &PGXPoolWrapper{pool: pool, engine: engine}, nil

	case typeSQLDB:
		db, err := config.PostgresSQLDBTest(ctx)
		if err != nil {
			return nil, err
		}

		engine, err := postgresengine.NewEngineFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, err
		}

		return &SQLDBWrapper{db: db, engine: engine}, nil

	case typeSQLXDB:
		db, err := config.PostgresSQLXTest(ctx)
		if err != nil {
			return nil, err
		}

		engine, err := postgresengine.NewEngineFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, err
		}

		return &SQLXWrapper{db: db, engine: engine}, nil

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}
}

// CleanUp empties all tables of the wrapper's engine and resets their sequences.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	tables := strings.Join(wrapper.GetEngine().TableNames(), ", ")
	exec(t, wrapper, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", tables))
}

// GivenBookWithStock inserts a book with the given stock, bypassing the catalog confirmation.
func GivenBookWithStock(t testing.TB, wrapper Wrapper, bookID circulation.BookID, stock int) {
	t.Helper()

	exec(t, wrapper, "INSERT INTO books (id, stock) VALUES ($1, $2)", bookID, stock)
}

// GivenUser inserts a user with valid profile data and returns its identifier.
func GivenUser(t testing.TB, wrapper Wrapper, lastName string) circulation.UserID {
	t.Helper()

	return queryInt64(t, wrapper,
		"INSERT INTO users (last_name, first_name, email, address, phone) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		lastName, "Jeanne", strings.ToLower(lastName)+"@example.org", "12 rue de la Paix, Paris", "0612345678",
	)
}

// GivenLoan inserts a loan created at loanDate, due LoanPeriod later, without touching the stock.
func GivenLoan(
	t testing.TB,
	wrapper Wrapper,
	userID circulation.UserID,
	bookID circulation.BookID,
	loanDate time.Time,
	returned bool,
) circulation.LoanID {

	t.Helper()

	loanDate = circulation.ToStoreTime(loanDate)

	return queryInt64(t, wrapper,
		"INSERT INTO loans (user_id, book_id, loan_date, due_date, returned) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		userID, bookID, loanDate, circulation.DueDateFor(loanDate), returned,
	)
}

// StockFromDB reads the stock of a book directly from the table.
func StockFromDB(t testing.TB, wrapper Wrapper, bookID circulation.BookID) int {
	t.Helper()

	return int(queryInt64(t, wrapper, "SELECT stock FROM books WHERE id = $1", bookID))
}

// ActiveLoansFromDB counts the active loans of a user directly in the table.
func ActiveLoansFromDB(t testing.TB, wrapper Wrapper, userID circulation.UserID) int {
	t.Helper()

	return int(queryInt64(t, wrapper, "SELECT count(*) FROM loans WHERE user_id = $1 AND NOT returned", userID))
}

// JournalEntriesFromDB counts the journal entries of the given type.
func JournalEntriesFromDB(t testing.TB, wrapper Wrapper, entryType string) int {
	t.Helper()

	return int(queryInt64(t, wrapper, "SELECT count(*) FROM loan_journal WHERE entry_type = $1", entryType))
}

func exec(t testing.TB, wrapper Wrapper, query string, args ...any) {
	t.Helper()

	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = w.pool.Exec(context.Background(), query, args...)

	case *SQLDBWrapper:
		_, err = w.db.Exec(query, args...)

	case *SQLXWrapper:
		_, err = w.db.Exec(query, args...)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error in arranging test data")
}

func queryInt64(t testing.TB, wrapper Wrapper, query string, args ...any) int64 {
	t.Helper()

	var value int64
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		err = w.pool.QueryRow(context.Background(), query, args...).Scan(&value)

	case *SQLDBWrapper:
		err = w.db.QueryRow(query, args...).Scan(&value)

	case *SQLXWrapper:
		err = w.db.QueryRow(query, args...).Scan(&value)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error in arranging test data")

	return value
}
