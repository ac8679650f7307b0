package memledger

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/alexandrebha/cybook/circulation"
)

// Operation names accepted by InjectError.
const (
	OpWithinTx       = "WithinTx"
	OpCountActive    = "CountActive"
	OpGetAllBooks    = "GetAllBooks"
	OpFindBook       = "FindBook"
	OpTopBorrowed    = "TopBorrowed"
	OpListOverdue    = "ListOverdue"
	OpLoansByUser    = "LoansByUser"
	OpListUsers      = "ListUsers"
	OpReadJournal    = "ReadJournal"
	OpUpsert         = "Upsert"
	OpIncrement      = "Increment"
	OpDecrement      = "Decrement"
	OpAppendJournal  = "AppendJournal"
	OpInsertLoan     = "InsertLoan"
	OpGetStock       = "GetStock"
	OpRecentLoans    = "RecentLoanCount"
	OpCountOverdue   = "CountOverdue"
	OpFindUser       = "FindUser"
	OpUsersWithLoans = "UsersWithActiveLoans"
)

type state struct {
	books      map[circulation.BookID]int
	users      map[circulation.UserID]circulation.User
	loans      []circulation.Loan
	journal    circulation.JournalEntries
	nextUserID circulation.UserID
	nextLoanID circulation.LoanID
	nextSeq    int64
}

func (s state) clone() state {
	return state{
		books:      maps.Clone(s.books),
		users:      maps.Clone(s.users),
		loans:      slices.Clone(s.loans),
		journal:    slices.Clone(s.journal),
		nextUserID: s.nextUserID,
		nextLoanID: s.nextLoanID,
		nextSeq:    s.nextSeq,
	}
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	state    state
	injected map[string][]error
	txCount  int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		state: state{
			books: make(map[circulation.BookID]int),
			users: make(map[circulation.UserID]circulation.User),
		},
		injected: make(map[string][]error),
	}
}

// InjectError makes the next times calls of the operation fail with err.
func (l *Ledger) InjectError(operation string, err error, times int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for range times {
		l.injected[operation] = append(l.injected[operation], err)
	}
}

// TxCount returns how many transactions were started.
func (l *Ledger) TxCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.txCount
}

// popInjected must be called with mu held.
func (l *Ledger) popInjected(operation string) error {
	queue := l.injected[operation]
	if len(queue) == 0 {
		return nil
	}

	l.injected[operation] = queue[1:]

	return queue[0]
}

// begin locks the ledger and checks the context and injected errors. The caller must unlock.
func (l *Ledger) begin(ctx context.Context, operation string) error {
	l.mu.Lock()

	if ctx.Err() != nil {
		return errors.Join(circulation.ErrStoreUnavailable, ctx.Err())
	}

	return l.popInjected(operation)
}

// WithinTx runs fn in a serialized transaction and restores the previous state if fn fails or panics.
func (l *Ledger) WithinTx(ctx context.Context, fn circulation.TxFunc) error {
	if err := l.begin(ctx, OpWithinTx); err != nil {
		l.mu.Unlock()
		return err
	}
	defer l.mu.Unlock()

	l.txCount++
	snapshot := l.state.clone()

	defer func() {
		if p := recover(); p != nil {
			l.state = snapshot
			panic(p)
		}
	}()

	if err := fn(ctx, &ledgerTx{ledger: l}); err != nil {
		l.state = snapshot
		return err
	}

	return nil
}

// GetStock returns the stock of the book.
func (l *Ledger) GetStock(ctx context.Context, bookID circulation.BookID) (int, error) {
	err := l.begin(ctx, OpGetStock)
	defer l.mu.Unlock()

	if err != nil {
		return 0, err
	}

	stock, ok := l.state.books[bookID]
	if !ok {
		return 0, circulation.ErrNotFound
	}

	return stock, nil
}

// FindBook returns the book.
func (l *Ledger) FindBook(ctx context.Context, bookID circulation.BookID) (circulation.Book, error) {
	err := l.begin(ctx, OpFindBook)
	defer l.mu.Unlock()

	if err != nil {
		return circulation.Book{}, err
	}

	stock, ok := l.state.books[bookID]
	if !ok {
		return circulation.Book{}, circulation.ErrNotFound
	}

	return circulation.Book{ID: bookID, Stock: stock}, nil
}

// GetAllBooks returns all books ordered by identifier.
func (l *Ledger) GetAllBooks(ctx context.Context) ([]circulation.Book, error) {
	err := l.begin(ctx, OpGetAllBooks)
	defer l.mu.Unlock()

	if err != nil {
		return nil, err
	}

	books := make([]circulation.Book, 0, len(l.state.books))
	for _, id := range slices.Sorted(maps.Keys(l.state.books)) {
		books = append(books, circulation.Book{ID: id, Stock: l.state.books[id]})
	}

	return books, nil
}

// Upsert adds one copy of the book, creating it with stock 1 if unknown.
func (l *Ledger) Upsert(ctx context.Context, bookID circulation.BookID) (int, error) {
	err := l.begin(ctx, OpUpsert)
	defer l.mu.Unlock()

	if err != nil {
		return 0, err
	}

	return l.state.upsert(bookID), nil
}

// CountActive counts the active loans of the user.
func (l *Ledger) CountActive(ctx context.Context, userID circulation.UserID) (int, error) {
	err := l.begin(ctx, OpCountActive)
	defer l.mu.Unlock()

	if err != nil {
		return 0, err
	}

	return l.state.countActive(userID), nil
}

// ListOverdue returns the active loans due before now, oldest due date first.
func (l *Ledger) ListOverdue(ctx context.Context, now time.Time) ([]circulation.OverdueLoan, error) {
	err := l.begin(ctx, OpListOverdue)
	defer l.mu.Unlock()

	if err != nil {
		return nil, err
	}

	overdue := make([]circulation.OverdueLoan, 0)
	for _, loan := range l.state.loans {
		if loan.IsOverdue(now) {
			overdue = append(overdue, circulation.BuildOverdueLoan(loan, now))
		}
	}

	sort.SliceStable(overdue, func(i, j int) bool {
		if overdue[i].DueDate.Equal(overdue[j].DueDate) {
			return overdue[i].ID < overdue[j].ID
		}
		return overdue[i].DueDate.Before(overdue[j].DueDate)
	})

	return overdue, nil
}

// CountOverdue counts the active loans due before now.
func (l *Ledger) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	err := l.begin(ctx, OpCountOverdue)
	defer l.mu.Unlock()

	if err != nil {
		return 0, err
	}

	count := 0
	for _, loan := range l.state.loans {
		if loan.IsOverdue(now) {
			count++
		}
	}

	return count, nil
}

// LoansByUser returns the loans of the user newest first, or of all users for a zero userID.
func (l *Ledger) LoansByUser(ctx context.Context, userID circulation.UserID, activeOnly bool) ([]circulation.Loan, error) {
	err := l.begin(ctx, OpLoansByUser)
	defer l.mu.Unlock()

	if err != nil {
		return nil, err
	}

	loans := make([]circulation.Loan, 0)
	for _, loan := range l.state.loans {
		if (userID == 0 || loan.UserID == userID) && (!activeOnly || loan.IsActive()) {
			loans = append(loans, loan)
		}
	}

	sort.SliceStable(loans, func(i, j int) bool {
		if loans[i].LoanDate.Equal(loans[j].LoanDate) {
			return loans[i].ID > loans[j].ID
		}
		return loans[i].LoanDate.After(loans[j].LoanDate)
	})

	return loans, nil
}

// TopBorrowed ranks books by loans created in the window, count descending then book identifier.
func (l *Ledger) TopBorrowed(ctx context.Context, windowDays, limit int, now time.Time) ([]circulation.BorrowCount, error) {
	err := l.begin(ctx, OpTopBorrowed)
	defer l.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if windowDays <= 0 || limit <= 0 {
		return nil, circulation.ErrInvalidArgument
	}

	windowStart := circulation.WindowStart(now, windowDays)
	counts := make(map[circulation.BookID]int)

	for _, loan := range l.state.loans {
		if !loan.LoanDate.Before(windowStart) {
			counts[loan.BookID]++
		}
	}

	ranking := make([]circulation.BorrowCount, 0, len(counts))
	for bookID, count := range counts {
		ranking = append(ranking, circulation.BorrowCount{BookID: bookID, Count: count})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count == ranking[j].Count {
			return ranking[i].BookID < ranking[j].BookID
		}
		return ranking[i].Count > ranking[j].Count
	})

	if len(ranking) > limit {
		ranking = ranking[:limit]
	}

	return ranking, nil
}

// RecentLoanCount counts the loans of the book created in the window.
func (l *Ledger) RecentLoanCount(ctx context.Context, bookID circulation.BookID, windowDays int, now time.Time) (int, error) {
	err := l.begin(ctx, OpRecentLoans)
	defer l.mu.Unlock()

	if err != nil {
		return 0, err
	}

	if windowDays <= 0 {
		return 0, circulation.ErrInvalidArgument
	}

	windowStart := circulation.WindowStart(now, windowDays)
	count := 0

	for _, loan := range l.state.loans {
		if loan.BookID == bookID && !loan.LoanDate.Before(windowStart) {
			count++
		}
	}

	return count, nil
}

// FindUser returns the user.
func (l *Ledger) FindUser(ctx context.Context, userID circulation.UserID) (circulation.User, error) {
	err := l.begin(ctx, OpFindUser)
	defer l.mu.Unlock()

	if err != nil {
		return circulation.User{}, err
	}

	user, ok := l.state.users[userID]
	if !ok {
		return circulation.User{}, circulation.ErrNotFound
	}

	return user, nil
}

// ListUsers returns all users ordered by identifier.
func (l *Ledger) ListUsers(ctx context.Context) ([]circulation.User, error) {
	err := l.begin(ctx, OpListUsers)
	defer l.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return l.state.listUsers(false), nil
}

// UsersWithActiveLoans returns the users with at least one active loan, ordered by identifier.
func (l *Ledger) UsersWithActiveLoans(ctx context.Context) ([]circulation.User, error) {
	err := l.begin(ctx, OpUsersWithLoans)
	defer l.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return l.state.listUsers(true), nil
}

// ReadJournal returns journal entries newest first, narrowed by the filter.
func (l *Ledger) ReadJournal(ctx context.Context, filter circulation.JournalFilter) (circulation.JournalEntries, error) {
	err := l.begin(ctx, OpReadJournal)
	defer l.mu.Unlock()

	if err != nil {
		return nil, err
	}

	entries := make(circulation.JournalEntries, 0)

	for i := len(l.state.journal) - 1; i >= 0; i-- {
		entry := l.state.journal[i]

		if !matchesFilter(entry, filter) {
			continue
		}

		entries = append(entries, entry)

		if filter.Limit > 0 && len(entries) == filter.Limit {
			break
		}
	}

	return entries, nil
}

type journalSubject struct {
	UserID circulation.UserID `json:"userID"`
	BookID circulation.BookID `json:"bookID"`
}

func matchesFilter(entry circulation.JournalEntry, filter circulation.JournalFilter) bool {
	if filter.UserID == 0 && filter.BookID == "" {
		return true
	}

	var subject journalSubject
	if err := jsoniter.ConfigFastest.Unmarshal(entry.PayloadJSON, &subject); err != nil {
		return false
	}

	return (filter.UserID == 0 || subject.UserID == filter.UserID) &&
		(filter.BookID == "" || subject.BookID == filter.BookID)
}

func (s *state) upsert(bookID circulation.BookID) int {
	s.books[bookID]++
	return s.books[bookID]
}

func (s *state) countActive(userID circulation.UserID) int {
	count := 0

	for _, loan := range s.loans {
		if loan.UserID == userID && loan.IsActive() {
			count++
		}
	}

	return count
}

func (s *state) listUsers(withActiveLoansOnly bool) []circulation.User {
	users := make([]circulation.User, 0, len(s.users))

	for _, id := range slices.Sorted(maps.Keys(s.users)) {
		if withActiveLoansOnly && s.countActive(id) == 0 {
			continue
		}

		users = append(users, s.users[id])
	}

	return users
}
