package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/alexandrebha/cybook/circulation"
)

const cacheKeyPrefix = "catalog:metadata:"

// Cache stores resolved metadata by identifier.
type Cache interface {
	// Get returns the cached metadata and true, or false on a miss.
	Get(ctx context.Context, id string) (circulation.Metadata, bool, error)
	Set(ctx context.Context, id string, metadata circulation.Metadata) error
}

// BadgerCache is a Cache on top of a badger key-value store. Entries expire after the configured TTL.
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadgerCache opens a cache in dir. An empty dir opens an in-memory store.
// A ttl of 0 keeps entries forever.
func OpenBadgerCache(dir string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	return &BadgerCache{db: db, ttl: ttl}, nil
}

func (c *BadgerCache) Get(_ context.Context, id string) (circulation.Metadata, bool, error) {
	var metadata circulation.Metadata

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKeyPrefix + id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return jsoniter.Unmarshal(val, &metadata)
		})
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return circulation.Metadata{}, false, nil
	case err != nil:
		return circulation.Metadata{}, false, fmt.Errorf("read catalog cache: %w", err)
	default:
		return metadata, true, nil
	}
}

func (c *BadgerCache) Set(_ context.Context, id string, metadata circulation.Metadata) error {
	value, err := jsoniter.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode catalog cache entry: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(cacheKeyPrefix+id), value)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}

		return txn.SetEntry(entry)
	})
}

// Close releases the underlying store.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

var _ Cache = (*BadgerCache)(nil)
