package postgresengine

import (
	"github.com/alexandrebha/cybook/circulation"
)

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithBooksTableName sets the name of the books table.
func WithBooksTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return circulation.ErrEmptyTableName
		}

		e.booksTableName = tableName

		return nil
	}
}

// WithUsersTableName sets the name of the users table.
func WithUsersTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return circulation.ErrEmptyTableName
		}

		e.usersTableName = tableName

		return nil
	}
}

// WithLoansTableName sets the name of the loans table.
func WithLoansTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return circulation.ErrEmptyTableName
		}

		e.loansTableName = tableName

		return nil
	}
}

// WithJournalTableName sets the name of the loan journal table.
func WithJournalTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return circulation.ErrEmptyTableName
		}

		e.journalTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Engine.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: operation summaries and domain rejections like out-of-stock (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: store failures that cause operation failures.
func WithLogger(logger circulation.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
// It receives operation durations, database errors and concurrency conflicts.
func WithMetrics(collector circulation.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
// Every public operation and every transaction gets its own span.
func WithTracing(collector circulation.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Engine.
// Records carry the context so that trace and span IDs can be attached by the backend.
func WithContextualLogger(logger circulation.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}
