// Package core contains the domain events of library circulation.
//
// Events describe what happened in business terms (BookBorrowed, BookReturned, BookCopyAdded, ...)
// rather than which rows changed. They are produced by the Decide functions of the command
// features and written to the loan journal in the same transaction as the state change.
//
// Failure events (BorrowingBookFailed, ReturningBookFailed) record rejected commands, so the
// journal also explains why a reader could not borrow or return a book.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
