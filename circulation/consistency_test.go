package circulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_GetConsistencyLevel_DefaultsToStrong(t *testing.T) {
	assert.Equal(t, StrongConsistency, GetConsistencyLevel(context.Background()))
}

func Test_GetConsistencyLevel_ReadsContextValue(t *testing.T) {
	ctx := WithEventualConsistency(context.Background())
	assert.Equal(t, EventualConsistency, GetConsistencyLevel(ctx))

	ctx = WithStrongConsistency(ctx)
	assert.Equal(t, StrongConsistency, GetConsistencyLevel(ctx))
}

func Test_ConsistencyLevel_String(t *testing.T) {
	assert.Equal(t, "strong", StrongConsistency.String())
	assert.Equal(t, "eventual", EventualConsistency.String())
	assert.Equal(t, "unknown", ConsistencyLevel(42).String())
}
