package circulation

import "context"

// ConsistencyLevel defines which database node a read may be served from.
type ConsistencyLevel int

const (
	// StrongConsistency requires reads from the primary database.
	// Borrow and return transactions always run on the primary regardless of this setting.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica, if one is configured.
	// Suitable for listings and rankings that tolerate slightly stale data.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store the consistency level preference.
const ConsistencyLevelKey contextKey = "circulation.consistency_level"

// WithStrongConsistency returns a context that routes reads to the primary database.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows reads from a replica database.
//
// Example usage:
//
//	ctx = circulation.WithEventualConsistency(ctx)
//	overdue, err := engine.ListOverdue(ctx, time.Now())
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context, StrongConsistency if unset.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
