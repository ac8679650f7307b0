package config

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPGXPoolTestConfig creates a pgxpool.Config for the test database.
// The pool is large enough for the concurrent borrow tests.
func PostgresPGXPoolTestConfig() (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(PostgresTestDSN())
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = 20
	dbConfig.MinConns = 2
	dbConfig.MaxConnLifetime = time.Hour
	dbConfig.MaxConnIdleTime = time.Minute * 5
	dbConfig.ConnConfig.ConnectTimeout = time.Second * 3

	return dbConfig, nil
}

// PostgresPGXPoolTest opens a pgx pool on the test database and pings it.
func PostgresPGXPoolTest(ctx context.Context) (*pgxpool.Pool, error) {
	dbConfig, err := PostgresPGXPoolTestConfig()
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
