package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/catalog"
	"github.com/alexandrebha/cybook/circulation"
)

func Test_BadgerCache_MissThenHit(t *testing.T) {
	// arrange
	cache, err := catalog.OpenBadgerCache("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	ctx := context.Background()
	metadata := circulation.Metadata{ISBN: "978-1", Title: "Le Petit Prince", Author: "Saint-Exupéry"}

	// act
	_, found, missErr := cache.Get(ctx, "978-1")
	setErr := cache.Set(ctx, "978-1", metadata)
	got, hit, hitErr := cache.Get(ctx, "978-1")

	// assert
	require.NoError(t, missErr)
	assert.False(t, found)
	require.NoError(t, setErr)
	require.NoError(t, hitErr)
	assert.True(t, hit)
	assert.Equal(t, metadata, got)
}

func Test_BadgerCache_PersistsInDirectory(t *testing.T) {
	// arrange
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := catalog.OpenBadgerCache(dir, time.Hour)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "978-1", circulation.Metadata{Title: "Persisted"}))
	require.NoError(t, cache.Close())

	// act
	reopened, err := catalog.OpenBadgerCache(dir, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, hit, getErr := reopened.Get(ctx, "978-1")

	// assert
	require.NoError(t, getErr)
	assert.True(t, hit)
	assert.Equal(t, "Persisted", got.Title)
}
