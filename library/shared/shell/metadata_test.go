package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/catalog"
	"github.com/alexandrebha/cybook/circulation"
)

type lookupFunc func(ctx context.Context, id string) (circulation.Metadata, error)

func (f lookupFunc) Lookup(ctx context.Context, id string) (circulation.Metadata, error) {
	return f(ctx, id)
}

func Test_ResolveMetadata_ReturnsMetadataWithTitle(t *testing.T) {
	// arrange
	lookup := lookupFunc(func(_ context.Context, id string) (circulation.Metadata, error) {
		return circulation.Metadata{ISBN: id, Title: "Bel-Ami"}, nil
	})

	// act
	metadata, err := ResolveMetadata(context.Background(), lookup, "978-1", time.Second)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Bel-Ami", metadata.Title)
}

func Test_ResolveMetadata_MapsFailuresToMetadataUnavailable(t *testing.T) {
	testCases := []struct {
		name   string
		lookup lookupFunc
	}{
		{"not found", func(context.Context, string) (circulation.Metadata, error) {
			return circulation.Metadata{}, &catalog.Error{Op: "lookup", Err: catalog.ErrNotFound}
		}},
		{"server error", func(context.Context, string) (circulation.Metadata, error) {
			return circulation.Metadata{}, catalog.ErrServer
		}},
		{"blank title", func(context.Context, string) (circulation.Metadata, error) {
			return circulation.Metadata{ISBN: "978-1", Title: "  "}, nil
		}},
		{"timeout", func(ctx context.Context, _ string) (circulation.Metadata, error) {
			<-ctx.Done()
			return circulation.Metadata{}, ctx.Err()
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := ResolveMetadata(context.Background(), tc.lookup, "978-1", 20*time.Millisecond)

			// assert
			assert.ErrorIs(t, err, circulation.ErrMetadataUnavailable)
			assert.False(t, errors.Is(err, context.DeadlineExceeded), "own timeout must not leak as a context error")
			assert.Equal(t, StatusRejected, StatusFor(err))
		})
	}
}

func Test_ResolveMetadata_KeepsCallerCancellation(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lookup := lookupFunc(func(ctx context.Context, _ string) (circulation.Metadata, error) {
		return circulation.Metadata{}, ctx.Err()
	})

	// act
	_, err := ResolveMetadata(ctx, lookup, "978-1", time.Second)

	// assert
	assert.ErrorIs(t, err, circulation.ErrMetadataUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_ResolveMetadata_WithoutLookup(t *testing.T) {
	_, err := ResolveMetadata(context.Background(), nil, "978-1", time.Second)

	assert.ErrorIs(t, err, circulation.ErrMetadataUnavailable)
}
