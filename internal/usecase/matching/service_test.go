package matching

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/campusbarter/tradematch/internal/domain"
)

// --- Mocks ---

type mockCatalog struct {
	available []domain.Item
	owned     map[string][]domain.Item
	err       error
}

func (m *mockCatalog) ListAvailable(_ context.Context) ([]domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.available, nil
}

func (m *mockCatalog) ListOwnedBy(_ context.Context, userID string) ([]domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.owned[userID], nil
}

// stubStrategy returns canned outcomes keyed by "subjectID/counterpartID"
// (or just the item ID for need passes). Unkeyed pairs score zero.
type stubStrategy struct {
	outcomes      map[string]domain.MatchOutcome
	itemPassCalls int
	needPassCalls int
}

func (s *stubStrategy) Name() string           { return "stub" }
func (s *stubStrategy) SupportsAnalysis() bool { return false }

func (s *stubStrategy) BeginItemPass(
	_ context.Context, subjects, counterparts []domain.Item,
) ItemPass {
	s.itemPassCalls++
	return &stubItemPass{strategy: s, subjects: subjects, counterparts: counterparts}
}

func (s *stubStrategy) BeginNeedPass(
	_ context.Context, _ string, items []domain.Item,
) NeedPass {
	s.needPassCalls++
	return &stubNeedPass{strategy: s, items: items}
}

type stubItemPass struct {
	strategy     *stubStrategy
	subjects     []domain.Item
	counterparts []domain.Item
}

func (p *stubItemPass) Score(subjectIdx, counterpartIdx int) domain.MatchOutcome {
	key := p.subjects[subjectIdx].ID + "/" + p.counterparts[counterpartIdx].ID
	if out, ok := p.strategy.outcomes[key]; ok {
		return out
	}
	return domain.Scored(0, "none")
}

type stubNeedPass struct {
	strategy *stubStrategy
	items    []domain.Item
}

func (p *stubNeedPass) Score(itemIdx int) domain.MatchOutcome {
	if out, ok := p.strategy.outcomes[p.items[itemIdx].ID]; ok {
		return out
	}
	return domain.Scored(0, "none")
}

func availableItem(id, owner string) domain.Item {
	return domain.Item{
		ID:      id,
		OwnerID: owner,
		Title:   "Item " + id,
		Status:  domain.StatusAvailable,
	}
}

// --- Tests ---

func TestRecommendations_SortsDescendingAndTruncates(t *testing.T) {
	catalog := &mockCatalog{
		available: []domain.Item{
			availableItem("c1", "u2"),
			availableItem("c2", "u2"),
			availableItem("c3", "u3"),
		},
		owned: map[string][]domain.Item{
			"u1": {availableItem("s1", "u1")},
		},
	}
	strategy := &stubStrategy{outcomes: map[string]domain.MatchOutcome{
		"s1/c1": domain.Scored(0.4, "low"),
		"s1/c2": domain.Scored(0.9, "high"),
		"s1/c3": domain.Scored(0.7, "mid"),
	}}
	svc := New(catalog, strategy, zap.NewNop())

	recs, err := svc.Recommendations(context.Background(), "u1", "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].RecommendedItem.ID != "c2" || recs[1].RecommendedItem.ID != "c3" {
		t.Errorf("wrong order: got %s, %s", recs[0].RecommendedItem.ID, recs[1].RecommendedItem.ID)
	}
	if recs[0].UserItem.ID != "s1" {
		t.Errorf("expected subject s1, got %s", recs[0].UserItem.ID)
	}
}

func TestRecommendations_StableOrderOnTies(t *testing.T) {
	catalog := &mockCatalog{
		available: []domain.Item{
			availableItem("c1", "u2"),
			availableItem("c2", "u2"),
			availableItem("c3", "u2"),
		},
		owned: map[string][]domain.Item{
			"u1": {availableItem("s1", "u1")},
		},
	}
	strategy := &stubStrategy{outcomes: map[string]domain.MatchOutcome{
		"s1/c1": domain.Scored(0.5, "tie"),
		"s1/c2": domain.Scored(0.5, "tie"),
		"s1/c3": domain.Scored(0.5, "tie"),
	}}
	svc := New(catalog, strategy, zap.NewNop())

	recs, err := svc.Recommendations(context.Background(), "u1", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"c1", "c2", "c3"} {
		if recs[i].RecommendedItem.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, recs[i].RecommendedItem.ID)
		}
	}
}

func TestRecommendations_ExcludesOwnItemsFromCandidates(t *testing.T) {
	catalog := &mockCatalog{
		available: []domain.Item{
			availableItem("s1", "u1"),
			availableItem("c1", "u2"),
		},
		owned: map[string][]domain.Item{
			"u1": {availableItem("s1", "u1")},
		},
	}
	strategy := &stubStrategy{outcomes: map[string]domain.MatchOutcome{
		"s1/c1": domain.Scored(0.8, "ok"),
	}}
	svc := New(catalog, strategy, zap.NewNop())

	recs, err := svc.Recommendations(context.Background(), "u1", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].RecommendedItem.ID != "c1" {
		t.Errorf("expected candidate c1, got %s", recs[0].RecommendedItem.ID)
	}
}

func TestRecommendations_SkippedOutcomesExcluded(t *testing.T) {
	catalog := &mockCatalog{
		available: []domain.Item{
			availableItem("c1", "u2"),
			availableItem("c2", "u2"),
		},
		owned: map[string][]domain.Item{
			"u1": {availableItem("s1", "u1")},
		},
	}
	strategy := &stubStrategy{outcomes: map[string]domain.MatchOutcome{
		"s1/c1": domain.Skipped(domain.SkipEmbeddingUnavailable),
		"s1/c2": domain.Scored(0.6, "ok"),
	}}
	svc := New(catalog, strategy, zap.NewNop())

	recs, err := svc.Recommendations(context.Background(), "u1", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].RecommendedItem.ID != "c2" {
		t.Errorf("expected c2, got %s", recs[0].RecommendedItem.ID)
	}
}

func TestRecommendations_SubjectRestrictedToItemID(t *testing.T) {
	catalog := &mockCatalog{
		available: []domain.Item{availableItem("c1", "u2")},
		owned: map[string][]domain.Item{
			"u1": {availableItem("s1", "u1"), availableItem("s2", "u1")},
		},
	}
	strategy := &stubStrategy{outcomes: map[string]domain.MatchOutcome{
		"s1/c1": domain.Scored(0.9, "a"),
		"s2/c1": domain.Scored(0.8, "b"),
	}}
	svc := New(catalog, strategy, zap.NewNop())

	recs, err := svc.Recommendations(context.Background(), "u1", "s2", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].UserItem.ID != "s2" {
		t.Errorf("expected subject s2, got %s", recs[0].UserItem.ID)
	}
}

func TestRecommendations_IneligibleSubjectReturnsEmpty(t *testing.T) {
	pending := availableItem("s1", "u1")
	pending.Status = domain.StatusPending

	cases := []struct {
		name   string
		owned  []domain.Item
		itemID string
	}{
		{name: "item not owned by caller", owned: []domain.Item{availableItem("s1", "u1")}, itemID: "other"},
		{name: "item not available", owned: []domain.Item{pending}, itemID: "s1"},
		{name: "caller owns nothing", owned: nil, itemID: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			catalog := &mockCatalog{
				available: []domain.Item{availableItem("c1", "u2")},
				owned:     map[string][]domain.Item{"u1": tc.owned},
			}
			strategy := &stubStrategy{}
			svc := New(catalog, strategy, zap.NewNop())

			recs, err := svc.Recommendations(context.Background(), "u1", tc.itemID, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(recs) != 0 {
				t.Errorf("expected empty result, got %d", len(recs))
			}
			if strategy.itemPassCalls != 0 {
				t.Error("strategy should not run without eligible subjects")
			}
		})
	}
}

func TestRecommendations_EmptyCatalogReturnsEmpty(t *testing.T) {
	catalog := &mockCatalog{
		owned: map[string][]domain.Item{"u1": {availableItem("s1", "u1")}},
	}
	svc := New(catalog, &stubStrategy{}, zap.NewNop())

	recs, err := svc.Recommendations(context.Background(), "u1", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty result, got %d", len(recs))
	}
}

func TestRecommendations_CatalogErrorPropagates(t *testing.T) {
	wantErr := errors.New("store down")
	catalog := &mockCatalog{err: wantErr}
	svc := New(catalog, &stubStrategy{}, zap.NewNop())

	_, err := svc.Recommendations(context.Background(), "u1", "", 0)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestRecommendations_OneStrategyPassPerRequest(t *testing.T) {
	catalog := &mockCatalog{
		available: []domain.Item{availableItem("c1", "u2"), availableItem("c2", "u3")},
		owned: map[string][]domain.Item{
			"u1": {availableItem("s1", "u1"), availableItem("s2", "u1")},
		},
	}
	strategy := &stubStrategy{}
	svc := New(catalog, strategy, zap.NewNop())

	if _, err := svc.Recommendations(context.Background(), "u1", "", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy.itemPassCalls != 1 {
		t.Errorf("expected 1 item pass, got %d", strategy.itemPassCalls)
	}
}

func TestRecommendations_Idempotent(t *testing.T) {
	catalog := &mockCatalog{
		available: []domain.Item{
			availableItem("c1", "u2"),
			availableItem("c2", "u2"),
		},
		owned: map[string][]domain.Item{
			"u1": {availableItem("s1", "u1")},
		},
	}
	strategy := &stubStrategy{outcomes: map[string]domain.MatchOutcome{
		"s1/c1": domain.Scored(0.3, "a"),
		"s1/c2": domain.Scored(0.7, "b"),
	}}
	svc := New(catalog, strategy, zap.NewNop())

	first, err := svc.Recommendations(context.Background(), "u1", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Recommendations(context.Background(), "u1", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].RecommendedItem.ID != second[i].RecommendedItem.ID ||
			first[i].Score != second[i].Score {
			t.Errorf("position %d differs between runs", i)
		}
	}
}

func TestInstantMatch_SortsAndLimits(t *testing.T) {
	catalog := &mockCatalog{available: []domain.Item{
		availableItem("a", "u1"),
		availableItem("b", "u2"),
		availableItem("c", "u3"),
	}}
	strategy := &stubStrategy{outcomes: map[string]domain.MatchOutcome{
		"a": domain.Scored(0.2, "low"),
		"b": domain.Scored(0.9, "high"),
		"c": domain.Scored(0.5, "mid"),
	}}
	svc := New(catalog, strategy, zap.NewNop())

	matches, err := svc.InstantMatch(context.Background(), "need", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Item.ID != "b" || matches[1].Item.ID != "c" {
		t.Errorf("wrong order: got %s, %s", matches[0].Item.ID, matches[1].Item.ID)
	}
}

func TestInstantMatch_DefaultLimitApplied(t *testing.T) {
	items := make([]domain.Item, 0, 15)
	outcomes := make(map[string]domain.MatchOutcome, 15)
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("i%02d", i)
		items = append(items, availableItem(id, "u2"))
		outcomes[id] = domain.Scored(0.5, "tie")
	}
	catalog := &mockCatalog{available: items}
	svc := New(catalog, &stubStrategy{outcomes: outcomes}, zap.NewNop())

	matches, err := svc.InstantMatch(context.Background(), "need", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != DefaultLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultLimit, len(matches))
	}
	if matches[0].Item.ID != "i00" {
		t.Errorf("stable order broken: first is %s", matches[0].Item.ID)
	}
}

func TestInstantMatch_MaxLimitCapsRequest(t *testing.T) {
	items := make([]domain.Item, 0, 6)
	for i := 0; i < 6; i++ {
		items = append(items, availableItem(fmt.Sprintf("i%d", i), "u2"))
	}
	catalog := &mockCatalog{available: items}
	svc := New(catalog, &stubStrategy{}, zap.NewNop()).WithLimits(3, 4)

	matches, err := svc.InstantMatch(context.Background(), "need", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 4 {
		t.Fatalf("expected max limit 4, got %d", len(matches))
	}
}

func TestInstantMatch_EmptyCatalog(t *testing.T) {
	strategy := &stubStrategy{}
	svc := New(&mockCatalog{}, strategy, zap.NewNop())

	matches, err := svc.InstantMatch(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected empty result, got %d", len(matches))
	}
	if strategy.needPassCalls != 0 {
		t.Error("strategy should not run against an empty catalog")
	}
}

func TestInstantMatch_SkippedOutcomesExcluded(t *testing.T) {
	catalog := &mockCatalog{available: []domain.Item{
		availableItem("a", "u1"),
		availableItem("b", "u2"),
	}}
	strategy := &stubStrategy{outcomes: map[string]domain.MatchOutcome{
		"a": domain.Skipped(domain.SkipZeroVector),
		"b": domain.Scored(0.4, "ok"),
	}}
	svc := New(catalog, strategy, zap.NewNop())

	matches, err := svc.InstantMatch(context.Background(), "need", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Item.ID != "b" {
		t.Errorf("expected b, got %s", matches[0].Item.ID)
	}
}
