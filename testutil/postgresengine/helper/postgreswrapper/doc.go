// Package postgreswrapper creates circulation engines on the test database for integration tests.
//
// The adapter is chosen with the ADAPTER_TYPE environment variable ("pgx.pool", "sql.db", "sqlx.db"; pgx.pool if empty).
// Tests are skipped when the test database cannot be reached. The schema is created on demand and all tables
// are truncated when a wrapper is created, so integration test packages must not run in parallel (go test -p 1).
package postgreswrapper
