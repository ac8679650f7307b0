package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations.
var (
	ErrNotFound    = errors.New("catalog: not found")
	ErrRateLimited = errors.New("catalog: rate limited by server")
	ErrBadRequest  = errors.New("catalog: bad request")
	ErrServer      = errors.New("catalog: server error")
	ErrInvalidXML  = errors.New("catalog: invalid response document")
	ErrEmptyQuery  = errors.New("catalog: empty query")

	ErrInvalidIdentifier = errors.New("catalog: invalid identifier")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op    string // "lookup" or "search"
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("catalog %s [%s]: %v", e.Op, e.Query, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, query string, err error) error {
	return &Error{Op: op, Query: query, Err: err}
}
