package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

// DefaultMetadataTimeout bounds a single catalog lookup made on behalf of a handler.
const DefaultMetadataTimeout = 5 * time.Second

// MetadataLookup resolves the catalog metadata of one identifier. *catalog.Client satisfies it.
type MetadataLookup interface {
	Lookup(ctx context.Context, id string) (circulation.Metadata, error)
}

// MetadataSearch runs a free catalog query. *catalog.Client satisfies it.
type MetadataSearch interface {
	Search(ctx context.Context, query string) ([]circulation.Metadata, error)
}

// ResolveMetadata looks up the metadata of bookID within timeout.
//
// Any failure, and any result without a title, is reported as circulation.ErrMetadataUnavailable.
// The cause is only kept as text, except when the caller's own context is done.
// It must never be called while a store transaction is open.
func ResolveMetadata(
	ctx context.Context,
	lookup MetadataLookup,
	bookID circulation.BookID,
	timeout time.Duration,
) (circulation.Metadata, error) {
	if lookup == nil {
		return circulation.Metadata{}, circulation.ErrMetadataUnavailable
	}

	if timeout <= 0 {
		timeout = DefaultMetadataTimeout
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	metadata, err := lookup.Lookup(lookupCtx, bookID)
	if err != nil {
		if ctx.Err() != nil {
			return circulation.Metadata{}, errors.Join(circulation.ErrMetadataUnavailable, ctx.Err())
		}

		return circulation.Metadata{}, fmt.Errorf("%w: %s", circulation.ErrMetadataUnavailable, err.Error())
	}

	if !metadata.HasTitle() {
		return circulation.Metadata{}, fmt.Errorf("%w: no title for %q", circulation.ErrMetadataUnavailable, bookID)
	}

	return metadata, nil
}
