package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campusbarter/tradematch/internal/domain"
)

// Service gates listing analysis behind ownership and strategy support.
// Analysis has no heuristic rendition: when the provider credential is
// absent the analyzer is nil and every request fails with
// ErrAnalysisUnavailable.
type Service struct {
	catalog  ItemGetter
	analyzer Analyzer
	logger   *zap.Logger
}

// New creates an analysis service. analyzer may be nil when the semantic
// strategy is not active.
func New(catalog ItemGetter, analyzer Analyzer, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, analyzer: analyzer, logger: logger}
}

// ItemAnalysis returns improvement suggestions for the caller's own item.
// The item must exist and belong to userID; both are checked before the
// strategy gate so the caller gets the most specific error.
func (s *Service) ItemAnalysis(ctx context.Context, userID, itemID string) (string, error) {
	item, err := s.catalog.Get(ctx, itemID)
	if err != nil {
		return "", fmt.Errorf("get item %s: %w", itemID, err)
	}

	if item.OwnerID != userID {
		return "", domain.ErrNotOwner
	}

	if s.analyzer == nil {
		return "", domain.ErrAnalysisUnavailable
	}

	analysis, err := s.analyzer.Analyze(ctx, &item)
	if err != nil {
		return "", fmt.Errorf("analyze item %s: %w", itemID, err)
	}

	s.logger.Debug("listing analysis generated",
		zap.String("item_id", itemID),
		zap.Int("length", len(analysis)),
	)
	return analysis, nil
}
