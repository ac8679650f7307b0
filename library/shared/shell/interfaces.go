package shell

import (
	"context"
)

// Command is implemented by every command of the command features.
// CommandType is used for observability labels and must work on the zero value.
type Command interface {
	CommandType() string
}

// CoreCommandHandler processes a command with business logic only; observability is added by wrappers.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query is implemented by every query of the query features.
// QueryType is used for observability labels and must work on the zero value.
type Query interface {
	QueryType() string
}

// CoreQueryHandler answers a query with business logic only; observability is added by wrappers.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
