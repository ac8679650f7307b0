package registeruser

import (
	"context"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// Ledger defines what the CommandHandler needs from the circulation engine.
type Ledger interface {
	WithinTx(ctx context.Context, fn circulation.TxFunc) error
}

// CommandHandler validates the profile, stores the user and journals the registration.
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

// Handle registers the user and returns the assigned identifier in HandlerResult.CreatedID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	profile, err := shell.ValidateUser(command.Profile)
	if err != nil {
		return shell.NewErrorResult(shell.RetryMetrics{}), err
	}

	profile.ID = 0

	var userID circulation.UserID

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		userID, execErr = h.executeCommand(retryCtx, profile, command.OccurredAt)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	result := shell.NewSuccessResult(retryMetrics)
	result.CreatedID = userID

	return result, nil
}

func (h CommandHandler) executeCommand(
	ctx context.Context,
	profile circulation.User,
	occurredAt core.OccurredAt,
) (circulation.UserID, error) {
	var userID circulation.UserID

	err := h.ledger.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		var err error

		userID, err = tx.InsertUser(ctx, profile)
		if err != nil {
			return err
		}

		profile.ID = userID

		entry, err := shell.JournalEntryFrom(core.BuildUserRegistered(profile, occurredAt), shell.NewJournalMetadata())
		if err != nil {
			return err
		}

		return tx.AppendJournal(ctx, entry)
	})

	return userID, err
}
