package memledger

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// GivenBookWithStock sets the stock of a book, creating it if needed.
func (l *Ledger) GivenBookWithStock(bookID circulation.BookID, stock int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.books[bookID] = stock
}

// GivenUser stores a user with a valid profile and returns its identifier.
func (l *Ledger) GivenUser(lastName string) circulation.UserID {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state.insertUser(circulation.User{
		LastName:  lastName,
		FirstName: "Jeanne",
		Email:     "jeanne." + lastName + "@example.org",
		Address:   "12 rue de la Paix, Paris",
		Phone:     "0612345678",
	})
}

// GivenLoan stores a loan created at loanDate without touching the stock.
func (l *Ledger) GivenLoan(userID circulation.UserID, bookID circulation.BookID, loanDate time.Time, returned bool) circulation.LoanID {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state.insertLoan(userID, bookID, loanDate, returned).ID
}

// Stock returns the stock of the book and whether it exists.
func (l *Ledger) Stock(bookID circulation.BookID) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stock, ok := l.state.books[bookID]

	return stock, ok
}

// User returns the stored user and whether it exists.
func (l *Ledger) User(userID circulation.UserID) (circulation.User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	user, ok := l.state.users[userID]

	return user, ok
}

// Loans returns a copy of all loans in insertion order.
func (l *Ledger) Loans() []circulation.Loan {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]circulation.Loan(nil), l.state.loans...)
}

// ActiveLoans counts the active loans of the user.
func (l *Ledger) ActiveLoans(userID circulation.UserID) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state.countActive(userID)
}

// JournalEntriesOfType returns the journal entries of the type in append order.
func (l *Ledger) JournalEntriesOfType(entryType string) circulation.JournalEntries {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make(circulation.JournalEntries, 0)
	for _, entry := range l.state.journal {
		if entry.EntryType == entryType {
			entries = append(entries, entry)
		}
	}

	return entries
}

// JournalLength returns the number of journal entries.
func (l *Ledger) JournalLength() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.state.journal)
}
