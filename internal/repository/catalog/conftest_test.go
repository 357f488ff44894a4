package catalog

import (
	"context"
	"testing"

	"github.com/campusbarter/tradematch/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	smembersFn     func(ctx context.Context, key string) ([]string, error)
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.smembersFn != nil {
		return m.smembersFn(ctx, key)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "barter:"), ms
}

// fixtureStore backs the mock with an in-memory catalog keyed like the real store.
func fixtureStore(items ...domain.Item) *mockStore {
	hashes := make(map[string]map[string]string)
	available := []string{}
	owners := make(map[string][]string)

	for i := range items {
		it := items[i]
		hashes[ItemKey("barter:", it.ID)] = ItemFields(&it)
		if it.Available() {
			available = append(available, it.ID)
		}
		ownerKey := OwnerKey("barter:", it.OwnerID)
		owners[ownerKey] = append(owners[ownerKey], it.ID)
	}

	return &mockStore{
		hgetAllFn: func(_ context.Context, key string) (map[string]string, error) {
			if h, ok := hashes[key]; ok {
				return h, nil
			}
			return map[string]string{}, nil
		},
		hgetAllMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			out := make([]map[string]string, len(keys))
			for i, key := range keys {
				if h, ok := hashes[key]; ok {
					out[i] = h
				} else {
					out[i] = map[string]string{}
				}
			}
			return out, nil
		},
		smembersFn: func(_ context.Context, key string) ([]string, error) {
			if key == AvailableKey("barter:") {
				return available, nil
			}
			return owners[key], nil
		},
	}
}
