// Package postgresengine provides the PostgreSQL implementation of the circulation ledger.
//
// The engine owns the books, users, loans and loan_journal tables. It offers read operations
// (stock, overdue loans, rankings, listings) directly and runs all mutations through WithinTx,
// which hands a circulation.LedgerTx to the caller and commits or rolls back on every exit path.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Row locks in a fixed order (user, then book; loan, then book) so borrow and return never deadlock each other
//   - Conditional stock updates that keep stock >= 0 under concurrency
//   - Classification of deadlocks and serialization failures as circulation.ErrConcurrencyConflict
//   - Read routing to a replica for contexts with eventual consistency (pgx only)
//   - Configurable table names, logging, metrics and tracing
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	engine, _ := postgresengine.NewEngineFromPGXPool(db, postgresengine.WithLogger(slog.Default()))
//	_ = engine.CreateTables(ctx)
//
//	err := engine.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
//		if _, err := tx.LockBook(ctx, "9782070360024"); err != nil {
//			return err
//		}
//		return tx.Decrement(ctx, "9782070360024")
//	})
package postgresengine
