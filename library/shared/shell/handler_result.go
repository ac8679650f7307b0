package shell

import (
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// HandlerResult represents the outcome of a command handler execution.
// It carries business outcomes and retry metadata without coupling handlers to observability.
type HandlerResult struct {
	// Idempotent indicates the command required no state change.
	Idempotent bool

	// LoanID is the loan created by a successful borrow, or the loan closed by a successful return.
	LoanID circulation.LoanID

	// CreatedID is the identifier assigned to a newly registered user.
	CreatedID int64

	// Stock is the stock of the affected book after the command, where one was changed.
	Stock int

	// RetryAttempts is the total number of attempts made (1 for no retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the final error encountered. "none" on success.
	LastErrorType string

	// RetriesExhausted is true when every attempt failed with a retryable error.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for a command that changed state.
func NewSuccessResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics)
}

// NewIdempotentResult creates a HandlerResult for a command that required no state change.
func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	result := resultFrom(retryMetrics)
	result.Idempotent = true

	return result
}

// NewErrorResult creates a HandlerResult for a failed command, still reporting retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics)
}

func resultFrom(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
