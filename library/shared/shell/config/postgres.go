package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/alexandrebha/cybook/circulation/postgresengine"
)

const (
	defaultMaxConnections    = 20
	defaultMinConnections    = 2
	defaultMaxIdleConns      = 5
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	defaultConnectTimeout    = time.Second * 5
)

// PostgresPGXPoolConfig creates a pgxpool.Config for dsn with the default pool tuning.
func PostgresPGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	dbConfig.MaxConns = defaultMaxConnections
	dbConfig.MinConns = defaultMinConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return dbConfig, nil
}

// OpenPGXPool opens a pgx pool on dsn and pings it.
func OpenPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbConfig, err := PostgresPGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, pingErr
	}

	return pool, nil
}

// OpenSQLDB opens a *sql.DB (lib/pq) on dsn and pings it.
func OpenSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	configureSQLPool(db)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

// OpenSQLX opens a *sqlx.DB (lib/pq) on dsn and pings it.
func OpenSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	configureSQLPool(db.DB)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

func configureSQLPool(db *sql.DB) {
	db.SetMaxOpenConns(defaultMaxConnections)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}

// OpenEngine connects with the configured adapter and builds the engine on top of the connection.
// The returned close function releases every connection that was opened.
// A replica is only used with the pgx.pool adapter.
func OpenEngine(
	ctx context.Context,
	cfg DatabaseConfig,
	options ...postgresengine.Option,
) (*postgresengine.Engine, func(), error) {
	switch cfg.Adapter {
	case AdapterPGXPool, "":
		pool, err := OpenPGXPool(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}

		if cfg.ReplicaURL == "" {
			engine, err := postgresengine.NewEngineFromPGXPool(pool, options...)
			if err != nil {
				pool.Close()
				return nil, nil, err
			}

			return engine, pool.Close, nil
		}

		replica, err := OpenPGXPool(ctx, cfg.ReplicaURL)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		closeAll := func() {
			replica.Close()
			pool.Close()
		}

		engine, err := postgresengine.NewEngineFromPGXPoolAndReplica(pool, replica, options...)
		if err != nil {
			closeAll()
			return nil, nil, err
		}

		return engine, closeAll, nil

	case AdapterSQLDB:
		db, err := OpenSQLDB(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}

		engine, err := postgresengine.NewEngineFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return engine, func() { _ = db.Close() }, nil

	case AdapterSQLXDB:
		db, err := OpenSQLX(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}

		engine, err := postgresengine.NewEngineFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return engine, func() { _ = db.Close() }, nil

	default:
		return nil, nil, errors.Join(ErrInvalidConfig, fmt.Errorf("unsupported database adapter %q", cfg.Adapter))
	}
}
