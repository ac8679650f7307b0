package memledger

import (
	"context"
	"errors"
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// ledgerTx works on the ledger state directly; the ledger mutex is held by WithinTx.
type ledgerTx struct {
	ledger *Ledger
}

var _ circulation.LedgerTx = (*ledgerTx)(nil)

func (t *ledgerTx) state() *state {
	return &t.ledger.state
}

func (t *ledgerTx) LockUser(_ context.Context, userID circulation.UserID) (circulation.User, error) {
	user, ok := t.state().users[userID]
	if !ok {
		return circulation.User{}, circulation.ErrNotFound
	}

	return user, nil
}

func (t *ledgerTx) CountActiveLoans(_ context.Context, userID circulation.UserID) (int, error) {
	return t.state().countActive(userID), nil
}

func (t *ledgerTx) LockBook(_ context.Context, bookID circulation.BookID) (circulation.Book, error) {
	stock, ok := t.state().books[bookID]
	if !ok {
		return circulation.Book{}, circulation.ErrNotFound
	}

	return circulation.Book{ID: bookID, Stock: stock}, nil
}

func (t *ledgerTx) Decrement(_ context.Context, bookID circulation.BookID) error {
	if err := t.ledger.popInjected(OpDecrement); err != nil {
		return err
	}

	stock, ok := t.state().books[bookID]
	if !ok {
		return circulation.ErrNotFound
	}

	if stock == 0 {
		return circulation.ErrOutOfStock
	}

	t.state().books[bookID] = stock - 1

	return nil
}

func (t *ledgerTx) Increment(_ context.Context, bookID circulation.BookID) error {
	if err := t.ledger.popInjected(OpIncrement); err != nil {
		return err
	}

	if _, ok := t.state().books[bookID]; !ok {
		return circulation.ErrNotFound
	}

	t.state().books[bookID]++

	return nil
}

func (t *ledgerTx) Upsert(_ context.Context, bookID circulation.BookID) (int, error) {
	if err := t.ledger.popInjected(OpUpsert); err != nil {
		return 0, err
	}

	return t.state().upsert(bookID), nil
}

func (t *ledgerTx) InsertLoan(
	_ context.Context,
	userID circulation.UserID,
	bookID circulation.BookID,
	loanDate time.Time,
) (circulation.Loan, error) {

	if err := t.ledger.popInjected(OpInsertLoan); err != nil {
		return circulation.Loan{}, err
	}

	if _, ok := t.state().users[userID]; !ok {
		return circulation.Loan{}, circulation.ErrNotFound
	}

	if _, ok := t.state().books[bookID]; !ok {
		return circulation.Loan{}, circulation.ErrNotFound
	}

	return t.state().insertLoan(userID, bookID, loanDate, false), nil
}

func (t *ledgerTx) LatestActiveLoan(
	_ context.Context,
	userID circulation.UserID,
	bookID circulation.BookID,
) (circulation.Loan, error) {

	var latest circulation.Loan
	found := false

	for _, loan := range t.state().loans {
		if loan.UserID != userID || loan.BookID != bookID || !loan.IsActive() {
			continue
		}

		if !found ||
			loan.DueDate.After(latest.DueDate) ||
			(loan.DueDate.Equal(latest.DueDate) && loan.ID > latest.ID) {
			latest = loan
			found = true
		}
	}

	if !found {
		return circulation.Loan{}, circulation.ErrNoActiveLoan
	}

	return latest, nil
}

func (t *ledgerTx) MarkReturned(_ context.Context, loanID circulation.LoanID) error {
	for i := range t.state().loans {
		loan := &t.state().loans[i]

		if loan.ID == loanID && loan.IsActive() {
			loan.Returned = true
			return nil
		}
	}

	return circulation.ErrNoActiveLoan
}

func (t *ledgerTx) InsertUser(_ context.Context, user circulation.User) (circulation.UserID, error) {
	return t.state().insertUser(user), nil
}

func (t *ledgerTx) UpdateUser(_ context.Context, user circulation.User) error {
	if _, ok := t.state().users[user.ID]; !ok {
		return circulation.ErrNotFound
	}

	t.state().users[user.ID] = user

	return nil
}

func (t *ledgerTx) AppendJournal(_ context.Context, entry circulation.JournalEntry) error {
	if err := t.ledger.popInjected(OpAppendJournal); err != nil {
		return err
	}

	if _, err := circulation.BuildJournalEntry(entry.EntryType, entry.OccurredAt, entry.PayloadJSON, entry.MetadataJSON); err != nil {
		return errors.Join(circulation.ErrInvalidArgument, err)
	}

	t.state().appendJournal(entry)

	return nil
}

func (s *state) insertLoan(userID circulation.UserID, bookID circulation.BookID, loanDate time.Time, returned bool) circulation.Loan {
	s.nextLoanID++
	loanDate = circulation.ToStoreTime(loanDate)

	loan := circulation.Loan{
		ID:       s.nextLoanID,
		UserID:   userID,
		BookID:   bookID,
		LoanDate: loanDate,
		DueDate:  circulation.DueDateFor(loanDate),
		Returned: returned,
	}

	s.loans = append(s.loans, loan)

	return loan
}

func (s *state) insertUser(user circulation.User) circulation.UserID {
	s.nextUserID++
	user.ID = s.nextUserID
	s.users[user.ID] = user

	return user.ID
}

func (s *state) appendJournal(entry circulation.JournalEntry) {
	s.nextSeq++
	entry.SequenceNumber = s.nextSeq
	entry.OccurredAt = circulation.ToStoreTime(entry.OccurredAt)
	s.journal = append(s.journal, entry)
}
