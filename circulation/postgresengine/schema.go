package postgresengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// schemaLockKey serializes concurrent CreateTables calls across processes.
const schemaLockKey = "cybook.circulation.schema"

// CreateTables creates the books, users, loans and journal tables with their constraints and indexes.
// It is idempotent and safe to call from several processes at once.
func (e *Engine) CreateTables(ctx context.Context) error {
	obs, ctx := e.observe(ctx, operationCreateTables)

	dbTx, beginErr := e.db.BeginTx(ctx)
	if beginErr != nil {
		err := classifyStoreError(beginErr)
		obs.failure(err)

		return err
	}
	defer e.rollback(ctx, dbTx)

	statements := append([]string{"SELECT pg_advisory_xact_lock(hashtext($1))"}, e.schemaStatements()...)

	for i, statement := range statements {
		var args []any
		if i == 0 {
			args = []any{schemaLockKey}
		}

		if _, execErr := dbTx.Exec(ctx, statement, args...); execErr != nil {
			err := classifyStoreError(execErr)
			e.logErr(ctx, logMsgDBExecFailed, err, logAttrQuery, statement)
			obs.failure(err)

			return err
		}

		e.logQueryWithDuration(ctx, statement, operationCreateTables, 0)
	}

	if commitErr := dbTx.Commit(ctx); commitErr != nil {
		err := classifyStoreError(commitErr)
		obs.failure(err)

		return err
	}

	obs.success()

	return nil
}

// schemaStatements returns the DDL for the configured table names.
func (e *Engine) schemaStatements() []string {
	books := quoteTable(e.booksTableName)
	users := quoteTable(e.usersTableName)
	loans := quoteTable(e.loansTableName)
	journal := quoteTable(e.journalTableName)

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s text PRIMARY KEY,
	%s integer NOT NULL DEFAULT 0 CHECK (%s >= 0)
)`, books, colID, colStock, colStock),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s bigserial PRIMARY KEY,
	%s text NOT NULL,
	%s text NOT NULL,
	%s text NOT NULL,
	%s text NOT NULL,
	%s text NOT NULL DEFAULT ''
)`, users, colID, colLastName, colFirstName, colEmail, colAddress, colPhone),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s bigserial PRIMARY KEY,
	%s bigint NOT NULL REFERENCES %s (%s),
	%s text NOT NULL REFERENCES %s (%s),
	%s timestamptz NOT NULL,
	%s timestamptz NOT NULL,
	%s boolean NOT NULL DEFAULT false,
	CHECK (%s > %s)
)`, loans, colID, colUserID, users, colID, colBookID, books, colID, colLoanDate, colDueDate, colReturned, colDueDate, colLoanDate),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s, %s DESC) WHERE %s IS FALSE`,
			indexName(e.loansTableName, "active_idx"), loans, colUserID, colBookID, colDueDate, colReturned),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s)`,
			indexName(e.loansTableName, "loan_date_idx"), loans, colLoanDate),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s bigserial PRIMARY KEY,
	%s text NOT NULL,
	%s timestamptz NOT NULL,
	%s jsonb NOT NULL,
	%s jsonb NOT NULL
)`, journal, colSequenceNumber, colEntryType, colOccurredAt, colPayload, colMetadata),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING gin (%s jsonb_path_ops)`,
			indexName(e.journalTableName, "payload_idx"), journal, colPayload),
	}
}

// TableNames returns the configured table names, referencing tables before referenced ones.
func (e *Engine) TableNames() []string {
	return []string{e.journalTableName, e.loansTableName, e.usersTableName, e.booksTableName}
}

// quoteTable quotes a possibly schema-qualified table name.
func quoteTable(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// indexName derives an index name from the unqualified table name.
func indexName(tableName, suffix string) string {
	parts := strings.Split(tableName, ".")

	return pgx.Identifier{parts[len(parts)-1] + "_" + suffix}.Sanitize()
}
