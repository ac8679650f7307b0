package circulation

import (
	"strings"
	"time"
)

const (
	// LoanPeriod is the fixed time between a loan's loan date and its due date.
	LoanPeriod = 14 * 24 * time.Hour

	// MaxActiveLoans is the maximum number of simultaneously active loans per user.
	MaxActiveLoans = 3

	// DefaultRankingWindowDays is the trailing window used for popularity rankings.
	DefaultRankingWindowDays = 30

	// DefaultRankingLimit is the number of titles shown in a popularity ranking.
	DefaultRankingLimit = 3

	day = 24 * time.Hour
)

// BookID is the opaque catalog identifier of a book, usually an ISBN.
type BookID = string

// UserID is the store-assigned identifier of a user.
type UserID = int64

// LoanID is the store-assigned identifier of a loan.
type LoanID = int64

// Book is the inventory record of a title: its identifier and the number of copies on the shelf.
type Book struct {
	ID    BookID
	Stock int
}

// IsAvailable reports whether at least one copy can be borrowed.
func (b Book) IsAvailable() bool {
	return b.Stock > 0
}

// User is a registered reader.
type User struct {
	ID        UserID
	LastName  string
	FirstName string
	Email     string
	Address   string
	Phone     string
}

// FullName returns "FirstName LastName".
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Loan ties one user to one book between a loan date and a due date.
// A loan is active while Returned is false. It transitions to returned exactly once.
type Loan struct {
	ID       LoanID
	UserID   UserID
	BookID   BookID
	LoanDate time.Time
	DueDate  time.Time
	Returned bool
}

// IsActive reports whether the loan has not been returned yet.
func (l Loan) IsActive() bool {
	return !l.Returned
}

// IsOverdue reports whether the loan is active and its due date lies before now.
func (l Loan) IsOverdue(now time.Time) bool {
	return l.IsActive() && l.DueDate.Before(now)
}

// OverdueLoan is an active loan past its due date, annotated with the number of whole days late.
type OverdueLoan struct {
	Loan
	DaysLate int
}

// BuildOverdueLoan annotates the loan with the whole days elapsed since its due date.
func BuildOverdueLoan(loan Loan, now time.Time) OverdueLoan {
	return OverdueLoan{
		Loan:     loan,
		DaysLate: DaysLate(loan.DueDate, now),
	}
}

// BorrowCount is one row of a popularity ranking.
type BorrowCount struct {
	BookID BookID
	Count  int
}

// Metadata is the bibliographic description of a title as returned by the catalog.
// It is attached to books only where it is displayed, it is never stored with them.
type Metadata struct {
	ISBN            string
	Title           string
	Author          string
	PublicationDate string
	Edition         string
	Collection      string
}

// HasTitle reports whether the metadata carries a human-readable title.
func (m Metadata) HasTitle() bool {
	return strings.TrimSpace(m.Title) != ""
}

// HasAuthor reports whether the metadata names an author.
func (m Metadata) HasAuthor() bool {
	return strings.TrimSpace(m.Author) != ""
}

// DueDateFor returns the due date of a loan created at loanDate.
func DueDateFor(loanDate time.Time) time.Time {
	return loanDate.Add(LoanPeriod)
}

// DaysLate returns the whole days (floor) between dueDate and now, or 0 if now is not after dueDate.
func DaysLate(dueDate, now time.Time) int {
	if !dueDate.Before(now) {
		return 0
	}

	return int(now.Sub(dueDate) / day)
}

// WindowStart returns the start of a trailing window of windowDays days ending at now.
func WindowStart(now time.Time, windowDays int) time.Time {
	return now.Add(-time.Duration(windowDays) * day)
}

// ToStoreTime normalizes a timestamp to UTC with microsecond precision, the resolution of the store.
func ToStoreTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
