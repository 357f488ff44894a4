package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/campusbarter/tradematch/internal/domain"
)

func TestListAvailable_SortsAndMapsItems(t *testing.T) {
	store := fixtureStore(
		domain.Item{ID: "item-2", OwnerID: "u1", Title: "Lamp", Category: "Furniture", Status: domain.StatusAvailable},
		domain.Item{ID: "item-1", OwnerID: "u2", Title: "Calc", Category: "Electronics",
			Tags: []string{"calculator", "math"}, Condition: "good", Status: domain.StatusAvailable},
	)
	repo := New(store, "barter:")

	items, err := repo.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "item-1" || items[1].ID != "item-2" {
		t.Errorf("expected id-sorted items, got %s, %s", items[0].ID, items[1].ID)
	}
	if items[0].Tags[0] != "calculator" || items[0].Tags[1] != "math" {
		t.Errorf("tags not preserved: %v", items[0].Tags)
	}
	if items[0].Condition != "good" {
		t.Errorf("condition not mapped: %q", items[0].Condition)
	}
}

func TestListAvailable_DropsNonAvailableAndStaleEntries(t *testing.T) {
	// A pending item and a deleted item linger in the available index.
	hashes := map[string]map[string]string{
		ItemKey("barter:", "a"): {"owner_id": "u1", "title": "A", "status": domain.StatusAvailable},
		ItemKey("barter:", "b"): {"owner_id": "u1", "title": "B", "status": domain.StatusPending},
	}
	store := &mockStore{
		smembersFn: func(_ context.Context, _ string) ([]string, error) {
			return []string{"a", "b", "gone"}, nil
		},
		hgetAllMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			out := make([]map[string]string, len(keys))
			for i, key := range keys {
				out[i] = hashes[key]
			}
			return out, nil
		},
	}
	repo := New(store, "barter:")

	items, err := repo.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("expected only item a, got %+v", items)
	}
}

func TestListOwnedBy_KeepsAllStatuses(t *testing.T) {
	store := fixtureStore(
		domain.Item{ID: "x", OwnerID: "u1", Title: "X", Status: domain.StatusAvailable},
		domain.Item{ID: "y", OwnerID: "u1", Title: "Y", Status: domain.StatusTraded},
		domain.Item{ID: "z", OwnerID: "u2", Title: "Z", Status: domain.StatusAvailable},
	)
	repo := New(store, "barter:")

	items, err := repo.ListOwnedBy(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items for u1, got %d", len(items))
	}
}

func TestListAvailable_EmptyIndex(t *testing.T) {
	repo, _ := newTestRepo(t)
	items, err := repo.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestGet_MapsFields(t *testing.T) {
	store := fixtureStore(domain.Item{
		ID: "item-1", OwnerID: "u2", Title: "Calc", Description: "TI-84",
		Category: "Electronics", Tags: []string{"calculator"}, Status: domain.StatusAvailable,
	})
	repo := New(store, "barter:")

	it, err := repo.Get(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.OwnerID != "u2" || it.Title != "Calc" || it.Category != "Electronics" {
		t.Errorf("item not mapped: %+v", it)
	}
}

func TestListAvailable_StoreError(t *testing.T) {
	repo := New(&mockStore{
		smembersFn: func(_ context.Context, _ string) ([]string, error) {
			return nil, errors.New("connection refused")
		},
	}, "barter:")

	if _, err := repo.ListAvailable(context.Background()); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
