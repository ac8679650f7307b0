// Package circulation provides the core abstractions and types of the loan lifecycle
// and inventory consistency engine.
//
// It defines the plain data records the engine works with (Book, User, Loan),
// the loan rules (a fixed loan period and a per-user limit of active loans),
// the error taxonomy shared by all layers, and the transactional ledger contract
// that storage engines implement.
//
// Key types:
//   - Book, User, Loan: plain records, never carrying catalog metadata
//   - OverdueLoan: an active loan annotated with whole days late
//   - LedgerTx: the operations available inside one borrow/return transaction
//   - JournalEntry: an audit record appended in the same transaction as the change it describes
//
// Common usage pattern:
//
//	err := ledger.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
//		book, err := tx.LockBook(ctx, bookID)
//		if err != nil {
//			return err
//		}
//		// decide, then apply
//		return tx.Decrement(ctx, book.ID)
//	})
package circulation
