package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Fixed keys the collections are stored under
const (
	KeySales      = "elder_sales"
	KeyAttendance = "elder_attendance"
	KeyLeaves     = "elder_leaves"
	KeyStaff      = "elder_staff"
	KeyBills      = "elder_bills"
	KeyAccounts   = "elder_accounts"
)

// CorruptedStateError reports a saved blob that could not be decoded.
// The collection it belongs to has been reset to its defaults.
type CorruptedStateError struct {
	Key string
	Err error
}

func (e *CorruptedStateError) Error() string {
	return fmt.Sprintf("corrupted state under %q: %v", e.Key, e.Err)
}

func (e *CorruptedStateError) Unwrap() error {
	return e.Err
}

// Collection is a list of records kept in memory and persisted as one blob.
// It is loaded once and rewritten wholesale on every mutation.
type Collection[T any] struct {
	key      string
	blobs    BlobStore
	defaults func() []T

	mu    sync.RWMutex
	items []T
}

// NewCollection creates a collection stored under key. defaults may be nil.
func NewCollection[T any](blobs BlobStore, key string, defaults func() []T) *Collection[T] {
	c := &Collection[T]{key: key, blobs: blobs, defaults: defaults}
	c.items = c.initial()
	return c
}

func (c *Collection[T]) initial() []T {
	if c.defaults == nil {
		return []T{}
	}
	return c.defaults()
}

// Key returns the blob key of the collection
func (c *Collection[T]) Key() string {
	return c.key
}

// Load reads the collection from the blob store. A missing blob leaves the
// defaults in place; an undecodable blob does too, and is reported as a
// *CorruptedStateError so the caller can log it and carry on.
func (c *Collection[T]) Load(ctx context.Context) error {
	blob, err := c.blobs.Load(ctx, c.key)
	if errors.Is(err, ErrBlobNotFound) {
		c.mu.Lock()
		c.items = c.initial()
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", c.key, err)
	}

	var items []T
	if err := json.Unmarshal(blob, &items); err != nil {
		c.mu.Lock()
		c.items = c.initial()
		c.mu.Unlock()
		return &CorruptedStateError{Key: c.key, Err: err}
	}
	if items == nil {
		items = []T{}
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()

	log.Printf("📦 Loaded %d records from %s", len(items), c.key)
	return nil
}

// Snapshot returns a copy of the current items
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Mutate applies fn to a copy of the items, persists the result and only
// then makes it visible. If fn or the save fails nothing changes.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	working := make([]T, len(c.items))
	copy(working, c.items)

	next, err := fn(working)
	if err != nil {
		return err
	}

	blob, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.key, err)
	}
	if err := c.blobs.Save(ctx, c.key, blob); err != nil {
		return fmt.Errorf("failed to save %s: %w", c.key, err)
	}

	c.items = next
	return nil
}

// Loader is anything that can be loaded from a blob store at startup
type Loader interface {
	Key() string
	Load(ctx context.Context) error
}

// LoadAll loads every collection. Corrupted blobs are logged and skipped
// over with defaults; any other failure aborts.
func LoadAll(ctx context.Context, loaders ...Loader) error {
	for _, l := range loaders {
		err := l.Load(ctx)
		var corrupted *CorruptedStateError
		if errors.As(err, &corrupted) {
			log.Printf("⚠️ %v, falling back to defaults", corrupted)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
