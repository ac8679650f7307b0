package updateuser

import (
	"context"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// Ledger defines what the CommandHandler needs from the circulation engine.
type Ledger interface {
	WithinTx(ctx context.Context, fn circulation.TxFunc) error
}

// CommandHandler validates the profile, then runs Lock -> Decide -> Apply in one transaction.
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

// Handle updates the profile. circulation.ErrNotFound if the user does not exist.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	profile, err := shell.ValidateUser(command.Profile)
	if err != nil {
		return shell.NewErrorResult(shell.RetryMetrics{}), err
	}

	var idempotent bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		idempotent, execErr = h.executeCommand(retryCtx, profile, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	if idempotent {
		return shell.NewIdempotentResult(retryMetrics), nil
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, profile circulation.User, command Command) (bool, error) {
	idempotent := false

	err := h.ledger.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		current, err := tx.LockUser(ctx, profile.ID)
		if err != nil {
			return err
		}

		decision := Decide(current, profile, command)

		idempotent = !decision.HasEventToAppend()
		if idempotent {
			return nil
		}

		if err := tx.UpdateUser(ctx, profile); err != nil {
			return err
		}

		entry, err := shell.JournalEntryFrom(decision.Event, shell.NewJournalMetadata())
		if err != nil {
			return err
		}

		return tx.AppendJournal(ctx, entry)
	})

	return idempotent, err
}
