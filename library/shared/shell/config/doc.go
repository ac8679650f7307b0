// Package config builds the process configuration of the library application from environment variables
// and opens the infrastructure it describes: PostgreSQL connections (pgx.Pool, sql.DB or sqlx.DB),
// the slog logger, and the OpenTelemetry tracer and meter providers.
//
// Precedence: command-line flags (applied by the caller), then environment variables, then defaults.
package config
