// Package analysis serves listing-improvement suggestions for an item the
// caller owns.
package analysis

import (
	"context"

	"github.com/campusbarter/tradematch/internal/domain"
)

// ItemGetter loads a single catalog item.
type ItemGetter interface {
	Get(ctx context.Context, itemID string) (domain.Item, error)
}

// Analyzer produces improvement suggestions for a listing.
type Analyzer interface {
	Analyze(ctx context.Context, item *domain.Item) (string, error)
}
