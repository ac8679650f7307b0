package shell

import (
	"errors"

	"github.com/alexandrebha/cybook/catalog"
	"github.com/alexandrebha/cybook/circulation"
)

// User-facing messages, one per error class.
const (
	MsgOK                    = "Done."
	MsgNotFound              = "The requested book or user does not exist."
	MsgOutOfStock            = "No copy of this book is available right now."
	MsgLimitExceeded         = "This user already has the maximum number of books on loan."
	MsgMetadataUnavailable   = "The catalog could not confirm this book, please try again later."
	MsgNoActiveLoan          = "This user has no active loan for this book."
	MsgInventoryInconsistent = "The inventory is inconsistent for this book, please contact an administrator."
	MsgInvalidArgument       = "Invalid parameters."
	MsgValidation            = "Some fields are invalid."
	MsgConcurrencyConflict   = "The library is busy, please try again."
	MsgCatalogUnreachable    = "The catalog service is unreachable, please try again later."
	MsgEmptyQuery            = "Please enter a search term."
	MsgCanceled              = "The operation was canceled."
	MsgTimeout               = "The operation took too long, please try again."
	MsgStoreUnavailable      = "The library database is unavailable, please try again later."
	MsgUnexpected            = "An unexpected error occurred."
)

// UserMessage maps err to exactly one human-readable message.
// Validation failures append the field details.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return MsgOK
	case errors.Is(err, circulation.ErrValidation):
		if details := ValidationDetails(err); details != "" {
			return MsgValidation + " " + details
		}
		return MsgValidation
	case errors.Is(err, circulation.ErrLimitExceeded):
		return MsgLimitExceeded
	case errors.Is(err, circulation.ErrOutOfStock):
		return MsgOutOfStock
	case errors.Is(err, circulation.ErrNoActiveLoan):
		return MsgNoActiveLoan
	case errors.Is(err, circulation.ErrMetadataUnavailable):
		return MsgMetadataUnavailable
	case errors.Is(err, circulation.ErrInventoryInconsistent):
		return MsgInventoryInconsistent
	case errors.Is(err, circulation.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, circulation.ErrInvalidArgument):
		return MsgInvalidArgument
	case errors.Is(err, catalog.ErrEmptyQuery):
		return MsgEmptyQuery
	case IsConcurrencyConflictError(err):
		return MsgConcurrencyConflict
	case IsCancellationError(err):
		return MsgCanceled
	case IsTimeoutError(err):
		return MsgTimeout
	case errors.Is(err, circulation.ErrStoreUnavailable):
		return MsgStoreUnavailable
	case errors.Is(err, catalog.ErrServer),
		errors.Is(err, catalog.ErrRateLimited),
		errors.Is(err, catalog.ErrBadRequest),
		errors.Is(err, catalog.ErrInvalidXML):
		return MsgCatalogUnreachable
	default:
		return MsgUnexpected
	}
}
