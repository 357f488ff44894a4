package catalog

import (
	"context"
	"fmt"

	"github.com/campusbarter/tradematch/internal/domain"
)

// writeStore is the consumer interface for the catalog writer.
type writeStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
}

// Writer loads items into the catalog store. In production the marketplace
// backend owns these keys; the writer exists for seed and test tooling.
type Writer struct {
	store  writeStore
	prefix string
}

// NewWriter creates a catalog writer.
func NewWriter(s writeStore, keyPrefix string) *Writer {
	return &Writer{store: s, prefix: keyPrefix}
}

// Put upserts one item and maintains the membership indexes. An existing hash
// is deleted first so fields removed from the item do not linger. Returns
// true when the item did not exist before.
func (w *Writer) Put(ctx context.Context, it *domain.Item) (bool, error) {
	key := ItemKey(w.prefix, it.ID)

	existed, err := w.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("exists item %s: %w", it.ID, err)
	}
	if existed {
		if err := w.store.Del(ctx, key); err != nil {
			return false, fmt.Errorf("del item %s: %w", it.ID, err)
		}
	}

	if err := w.store.HSet(ctx, key, ItemFields(it)); err != nil {
		return false, fmt.Errorf("hset item %s: %w", it.ID, err)
	}
	if err := w.store.SAdd(ctx, OwnerKey(w.prefix, it.OwnerID), it.ID); err != nil {
		return false, fmt.Errorf("index owner for item %s: %w", it.ID, err)
	}

	availableKey := AvailableKey(w.prefix)
	if it.Available() {
		err = w.store.SAdd(ctx, availableKey, it.ID)
	} else {
		err = w.store.SRem(ctx, availableKey, it.ID)
	}
	if err != nil {
		return false, fmt.Errorf("index availability for item %s: %w", it.ID, err)
	}

	return !existed, nil
}

// Delete removes one item and its index entries.
func (w *Writer) Delete(ctx context.Context, id string) error {
	key := ItemKey(w.prefix, id)

	fields, err := w.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("hgetall item %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.ErrItemNotFound
	}

	if err := w.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del item %s: %w", id, err)
	}
	if err := w.store.SRem(ctx, AvailableKey(w.prefix), id); err != nil {
		return fmt.Errorf("unindex availability for item %s: %w", id, err)
	}
	if err := w.store.SRem(ctx, OwnerKey(w.prefix, fields["owner_id"]), id); err != nil {
		return fmt.Errorf("unindex owner for item %s: %w", id, err)
	}
	return nil
}
