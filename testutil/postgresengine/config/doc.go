// Package config provides PostgreSQL connections for the circulation engine tests.
//
// It opens connections with each supported adapter (pgx.Pool, sql.DB, sqlx.DB) against the test database.
// The DSN can be overridden with CYBOOK_TEST_DATABASE_URL.
package config
