package addbookcopy

import (
	"context"
	"time"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// Ledger defines what the CommandHandler needs from the circulation engine.
type Ledger interface {
	WithinTx(ctx context.Context, fn circulation.TxFunc) error
}

// CommandHandler confirms the title through the catalog, then upserts the book and journals the copy.
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

// Handle adds the copy and returns the new stock in HandlerResult.Stock.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if command.BookID == "" {
		return shell.NewErrorResult(shell.RetryMetrics{}), circulation.ErrInvalidArgument
	}

	metadata, err := shell.ResolveMetadata(ctx, h.catalog, command.BookID, h.lookupTimeout)
	if err != nil {
		return shell.NewErrorResult(shell.RetryMetrics{}), err
	}

	var stock int

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		stock, execErr = h.executeCommand(retryCtx, command, metadata)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	result := shell.NewSuccessResult(retryMetrics)
	result.Stock = stock

	return result, nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command, metadata circulation.Metadata) (int, error) {
	var stock int

	err := h.ledger.WithinTx(ctx, func(ctx context.Context, tx circulation.LedgerTx) error {
		var err error

		stock, err = tx.Upsert(ctx, command.BookID)
		if err != nil {
			return err
		}

		event := core.BuildBookCopyAdded(metadata, command.BookID, stock, command.OccurredAt)

		entry, err := shell.JournalEntryFrom(event, shell.NewJournalMetadata())
		if err != nil {
			return err
		}

		return tx.AppendJournal(ctx, entry)
	})

	return stock, err
}
