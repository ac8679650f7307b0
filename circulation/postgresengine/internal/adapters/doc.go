// Package adapters provide database adapter implementations for the PostgreSQL circulation engine.
//
// Three PostgreSQL client libraries are supported: pgxpool.Pool, sql.DB and sqlx.DB.
// All of them are exposed through the common DBAdapter interface, so the engine issues the same
// statements and runs the same transactions whichever connection type the application owns.
package adapters
