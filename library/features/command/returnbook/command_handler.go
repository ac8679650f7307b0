package returnbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// Ledger defines what the CommandHandler needs from the circulation engine.
type Ledger interface {
	WithinTx(ctx context.Context, fn circulation.TxFunc) error
}

// CommandHandler runs Lock -> Decide -> Apply for a return in one transaction.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	ledger       Ledger
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(ledger Ledger, opts ...Option) CommandHandler {
	handler := CommandHandler{ledger: ledger}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle closes the loan and returns its identifier in HandlerResult.LoanID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var (
		loanID    circulation.LoanID
		rejection error
	)

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		loanID, rejection, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	if rejection != nil {
		return shell.NewErrorResult(retryMetrics), rejection
	}

	result := shell.NewSuccessResult(retryMetrics)
	result.LoanID = loanID

	return result, nil
}

func (h CommandHandler) executeCommand(
	ctx context.Context,
	command Command,
) (loanID circulation.LoanID, rejection error, err error) {
	err = h.ledger.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		loanID, rejection = 0, nil

		var s State

		loan, err := tx.LatestActiveLoan(ctx, command.UserID, command.BookID)
		switch {
		case err == nil:
			s = State{LoanFound: true, Loan: loan}
		case !errors.Is(err, circulation.ErrNoActiveLoan):
			return err
		}

		decision := Decide(s, command)

		if rejection = decision.HasError(); rejection != nil {
			return appendJournal(ctx, tx, decision.Event)
		}

		if err := tx.MarkReturned(ctx, s.Loan.ID); err != nil {
			return err
		}

		if err := tx.Increment(ctx, command.BookID); err != nil {
			if errors.Is(err, circulation.ErrNotFound) {
				return fmt.Errorf("%w: loan %d references book %q which has no inventory row",
					circulation.ErrInventoryInconsistent, s.Loan.ID, command.BookID)
			}
			return err
		}

		if err := appendJournal(ctx, tx, decision.Event); err != nil {
			return err
		}

		loanID = s.Loan.ID

		return nil
	})

	return loanID, rejection, err
}

func appendJournal(ctx context.Context, tx circulation.LedgerTx, event core.DomainEvent) error {
	entry, err := shell.JournalEntryFrom(event, shell.NewJournalMetadata())
	if err != nil {
		return err
	}

	return tx.AppendJournal(ctx, entry)
}
