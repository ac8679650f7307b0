// Package borrowbook implements the Borrow Book use case.
//
// A borrow is checked in three stages. The user's active loan count is read first, so that a user at the
// borrowing limit is rejected before any network call. The book's title is then resolved through the
// catalog, outside of any transaction. Finally one store transaction locks the user row and the book row,
// re-counts the active loans under the lock, lets the pure Decide function rule, and applies the outcome:
// one copy off the shelf, one new loan due 14 days later, one journal entry.
//
// Rejections are journaled as BorrowingBookFailed in the same transaction and nothing else changes.
package borrowbook
