// Package catalog reads the marketplace item catalog from the key-value
// store. The matching service never writes catalog state; items are kept
// up to date by the marketplace backend. Each item lives in a hash at
// {prefix}item:{id}; membership sets {prefix}items:available and
// {prefix}items:owner:{userID} index the hashes.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/campusbarter/tradematch/internal/domain"
)

// store is the consumer interface for the catalog reader (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements the catalog reader contract of the matching engine.
type Repo struct {
	store  store
	prefix string
}

// New creates a catalog repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// ListAvailable returns every item with status "available", in id order.
// Set members come back unordered; sorting keeps candidate enumeration
// deterministic across identical catalogs, which the ranking tie-break
// depends on.
func (r *Repo) ListAvailable(ctx context.Context) ([]domain.Item, error) {
	items, err := r.listIndexed(ctx, AvailableKey(r.prefix))
	if err != nil {
		return nil, err
	}
	// The index can lag behind a status transition; drop anything that is
	// no longer available.
	available := items[:0]
	for _, it := range items {
		if it.Available() {
			available = append(available, it)
		}
	}
	return available, nil
}

// ListOwnedBy returns every item owned by userID regardless of status, in id
// order. The engine filters to available items itself.
func (r *Repo) ListOwnedBy(ctx context.Context, userID string) ([]domain.Item, error) {
	return r.listIndexed(ctx, OwnerKey(r.prefix, userID))
}

// Get returns one item by id.
func (r *Repo) Get(ctx context.Context, id string) (domain.Item, error) {
	fields, err := r.store.HGetAll(ctx, ItemKey(r.prefix, id))
	if err != nil {
		return domain.Item{}, fmt.Errorf("hgetall item %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return itemFromFields(id, fields), nil
}

func (r *Repo) listIndexed(ctx context.Context, indexKey string) ([]domain.Item, error) {
	ids, err := r.store.SMembers(ctx, indexKey)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", indexKey, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ItemKey(r.prefix, id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall items: %w", err)
	}

	items := make([]domain.Item, 0, len(ids))
	for i, fields := range hashes {
		if len(fields) == 0 {
			// Stale index entry for a deleted item.
			continue
		}
		items = append(items, itemFromFields(ids[i], fields))
	}
	return items, nil
}

func itemFromFields(id string, fields map[string]string) domain.Item {
	var tags []string
	if raw := fields["tags"]; raw != "" {
		tags = strings.Split(raw, ",")
	}
	return domain.Item{
		ID:          id,
		OwnerID:     fields["owner_id"],
		Title:       fields["title"],
		Description: fields["description"],
		Category:    fields["category"],
		Condition:   fields["condition"],
		Tags:        tags,
		Status:      fields["status"],
	}
}

// ItemFields renders an item into its hash representation. Used by seed and
// test tooling; the service itself never writes items.
func ItemFields(it *domain.Item) map[string]string {
	fields := map[string]string{
		"owner_id":    it.OwnerID,
		"title":       it.Title,
		"description": it.Description,
		"category":    it.Category,
		"status":      it.Status,
	}
	if it.Condition != "" {
		fields["condition"] = it.Condition
	}
	if len(it.Tags) > 0 {
		fields["tags"] = strings.Join(it.Tags, ",")
	}
	return fields
}

// ItemKey returns the hash key for one item.
func ItemKey(prefix, id string) string {
	return prefix + "item:" + id
}

// AvailableKey returns the membership set key for available items.
func AvailableKey(prefix string) string {
	return prefix + "items:available"
}

// OwnerKey returns the membership set key for one owner's items.
func OwnerKey(prefix, userID string) string {
	return prefix + "items:owner:" + userID
}
