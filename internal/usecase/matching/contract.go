package matching

import (
	"context"

	"github.com/campusbarter/tradematch/internal/domain"
)

// CatalogReader is the read-only catalog contract the ranking engine
// consumes. Implementations must already restrict ListAvailable to items
// with status "available"; the engine filters defensively on top of that.
type CatalogReader interface {
	ListAvailable(ctx context.Context) ([]domain.Item, error)
	ListOwnedBy(ctx context.Context, userID string) ([]domain.Item, error)
}

// Strategy is the scoring capability used for one ranking pass: the semantic
// variant embeds text and compares vectors, the heuristic variant works from
// category and tag overlap. The engine captures a single Strategy value per
// invocation and passes it through the whole pass, so scores produced by
// different strategies can never be mixed in one result list.
type Strategy interface {
	Name() string
	SupportsAnalysis() bool

	// BeginItemPass prepares pairwise scoring over subjects and counterparts,
	// performing at most one embedding call per distinct item.
	BeginItemPass(ctx context.Context, subjects, counterparts []domain.Item) ItemPass

	// BeginNeedPass prepares scoring of items against a free-text need,
	// embedding the need at most once.
	BeginNeedPass(ctx context.Context, need string, items []domain.Item) NeedPass
}

// ItemPass scores one subject/counterpart pairing by index into the slices
// given to BeginItemPass.
type ItemPass interface {
	Score(subjectIdx, counterpartIdx int) domain.MatchOutcome
}

// NeedPass scores one item by index into the slice given to BeginNeedPass.
type NeedPass interface {
	Score(itemIdx int) domain.MatchOutcome
}
