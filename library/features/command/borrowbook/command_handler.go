package borrowbook

import (
	"context"
	"errors"
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// Ledger defines what the CommandHandler needs from the circulation engine.
type Ledger interface {
	CountActive(ctx context.Context, userID circulation.UserID) (int, error)
	WithinTx(ctx context.Context, fn circulation.TxFunc) error
}

// CommandHandler runs the borrow workflow: pre-check, catalog lookup, then Lock -> Decide -> Apply in one
// transaction, retried on lock conflicts. External wrappers handle all observability concerns.
type CommandHandler struct {
	ledger        Ledger
	catalog       shell.MetadataLookup
	lookupTimeout time.Duration
	retryOptions  []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithLookupTimeout bounds the catalog lookup. Default: shell.DefaultMetadataTimeout.
func WithLookupTimeout(timeout time.Duration) Option {
	return func(h *CommandHandler) {
		h.lookupTimeout = timeout
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(ledger Ledger, catalog shell.MetadataLookup, opts ...Option) CommandHandler {
	handler := CommandHandler{
		ledger:        ledger,
		catalog:       catalog,
		lookupTimeout: shell.DefaultMetadataTimeout,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle borrows one copy and returns the new loan's identifier in HandlerResult.LoanID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	ctx = circulation.WithStrongConsistency(ctx)

	activeLoans, err := h.ledger.CountActive(ctx, command.UserID)
	if err != nil {
		return shell.NewErrorResult(shell.RetryMetrics{}), err
	}

	if activeLoans >= circulation.MaxActiveLoans {
		return shell.NewErrorResult(shell.RetryMetrics{}), circulation.ErrLimitExceeded
	}

	metadata, err := shell.ResolveMetadata(ctx, h.catalog, command.BookID, h.lookupTimeout)
	if err != nil {
		return shell.NewErrorResult(shell.RetryMetrics{}), err
	}

	var outcome outcome

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		outcome, execErr = h.executeCommand(retryCtx, command, metadata.Title)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	if outcome.rejection != nil {
		return shell.NewErrorResult(retryMetrics), outcome.rejection
	}

	result := shell.NewSuccessResult(retryMetrics)
	result.LoanID = outcome.loanID
	result.Stock = outcome.stock

	return result, nil
}

type outcome struct {
	loanID    circulation.LoanID
	stock     int
	rejection error
}

// executeCommand is one transactional attempt. A rejection commits its journal entry, so it is
// reported through the outcome and not as the transaction's error.
func (h CommandHandler) executeCommand(ctx context.Context, command Command, title string) (outcome, error) {
	var result outcome

	err := h.ledger.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		result = outcome{}

		s, err := loadState(ctx, tx, command)
		if err != nil {
			return err
		}

		s.Title = title
		decision := Decide(s, command)

		if rejection := decision.HasError(); rejection != nil {
			result.rejection = rejection
			return appendJournal(ctx, tx, decision.Event)
		}

		if err := tx.Decrement(ctx, command.BookID); err != nil {
			return err
		}

		loan, err := tx.InsertLoan(ctx, command.UserID, command.BookID, command.OccurredAt)
		if err != nil {
			return err
		}

		borrowed, _ := decision.Event.(core.BookBorrowed)
		if err := appendJournal(ctx, tx, borrowed.WithLoanID(loan.ID)); err != nil {
			return err
		}

		result.loanID = loan.ID
		result.stock = s.Stock - 1

		return nil
	})

	return result, err
}

// loadState locks the user row, then the book row.
func loadState(ctx context.Context, tx circulation.LedgerTx, command Command) (State, error) {
	var s State

	if _, err := tx.LockUser(ctx, command.UserID); err != nil {
		if errors.Is(err, circulation.ErrNotFound) {
			return s, nil
		}
		return s, err
	}

	s.UserExists = true

	activeLoans, err := tx.CountActiveLoans(ctx, command.UserID)
	if err != nil {
		return s, err
	}

	s.ActiveLoans = activeLoans

	book, err := tx.LockBook(ctx, command.BookID)
	if err != nil {
		if errors.Is(err, circulation.ErrNotFound) {
			return s, nil
		}
		return s, err
	}

	s.BookExists = true
	s.Stock = book.Stock

	return s, nil
}

func appendJournal(ctx context.Context, tx circulation.LedgerTx, event core.DomainEvent) error {
	entry, err := shell.JournalEntryFrom(event, shell.NewJournalMetadata())
	if err != nil {
		return err
	}

	return tx.AppendJournal(ctx, entry)
}
