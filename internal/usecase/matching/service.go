package matching

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campusbarter/tradematch/internal/domain"
	"github.com/campusbarter/tradematch/internal/metrics"
)

// DefaultLimit caps result lists when the caller does not supply a usable limit.
const DefaultLimit = 10

// Service is the ranking engine: it enumerates candidate pairings, scores
// them through the configured strategy, and returns sorted, truncated
// result lists. It is read-only with respect to the catalog and
// deterministic given identical inputs and provider responses.
type Service struct {
	catalog      CatalogReader
	strategy     Strategy
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

// New creates a ranking engine bound to one strategy for its lifetime.
func New(catalog CatalogReader, strategy Strategy, logger *zap.Logger) *Service {
	return &Service{
		catalog:      catalog,
		strategy:     strategy,
		defaultLimit: DefaultLimit,
		maxLimit:     0, // unlimited
		logger:       logger,
	}
}

// WithLimits configures the default and maximum result list lengths.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// SupportsAnalysis reports whether the active strategy can serve listing
// analysis requests.
func (s *Service) SupportsAnalysis() bool {
	return s.strategy.SupportsAnalysis()
}

// StrategyName returns the active strategy's name for logging and metrics.
func (s *Service) StrategyName() string {
	return s.strategy.Name()
}

// Recommendations ranks trade pairings between the caller's available items
// and every available item owned by somebody else. When itemID is set, the
// subject side is restricted to that one item; an itemID that is unknown,
// not owned by the caller, or unavailable yields an empty list rather than
// an error (no-eligible-subject keeps the historical empty-result contract).
func (s *Service) Recommendations(
	ctx context.Context, userID, itemID string, limit int,
) ([]domain.Recommendation, error) {
	start := time.Now()
	limit = s.clampLimit(limit)

	owned, err := s.catalog.ListOwnedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned items: %w", err)
	}

	subjects := make([]domain.Item, 0, len(owned))
	for _, it := range owned {
		if !it.Available() {
			continue
		}
		if itemID != "" && it.ID != itemID {
			continue
		}
		subjects = append(subjects, it)
	}
	if len(subjects) == 0 {
		s.logger.Debug("no eligible subject for recommendations",
			zap.String("user_id", userID),
			zap.String("item_id", itemID),
		)
		return []domain.Recommendation{}, nil
	}

	available, err := s.catalog.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available items: %w", err)
	}

	counterparts := make([]domain.Item, 0, len(available))
	for _, it := range available {
		if it.OwnerID == userID {
			continue
		}
		counterparts = append(counterparts, it)
	}
	if len(counterparts) == 0 {
		return []domain.Recommendation{}, nil
	}

	pass := s.strategy.BeginItemPass(ctx, subjects, counterparts)

	recs := make([]domain.Recommendation, 0, len(subjects)*len(counterparts))
	var skipped int
	for i := range subjects {
		for j := range counterparts {
			out := pass.Score(i, j)
			if out.Skipped {
				skipped++
				continue
			}
			recs = append(recs, domain.Recommendation{
				UserItem:        subjects[i],
				RecommendedItem: counterparts[j],
				Score:           out.Score,
				Reason:          out.Reason,
			})
		}
	}

	s.observePass("recommendations", len(recs), skipped, start)

	sortByScore(recs, func(r *domain.Recommendation) float64 { return r.Score })
	return truncate(recs, limit), nil
}

// InstantMatch ranks every available catalog item against a free-text need
// description.
func (s *Service) InstantMatch(
	ctx context.Context, need string, limit int,
) ([]domain.InstantMatch, error) {
	start := time.Now()
	limit = s.clampLimit(limit)

	available, err := s.catalog.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available items: %w", err)
	}
	if len(available) == 0 {
		return []domain.InstantMatch{}, nil
	}

	pass := s.strategy.BeginNeedPass(ctx, need, available)

	matches := make([]domain.InstantMatch, 0, len(available))
	var skipped int
	for i := range available {
		out := pass.Score(i)
		if out.Skipped {
			skipped++
			continue
		}
		matches = append(matches, domain.InstantMatch{
			Item:   available[i],
			Score:  out.Score,
			Reason: out.Reason,
		})
	}

	s.observePass("instant_match", len(matches), skipped, start)

	sortByScore(matches, func(m *domain.InstantMatch) float64 { return m.Score })
	return truncate(matches, limit), nil
}

// clampLimit maps a missing or unusable limit to the default and enforces
// the configured maximum.
func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func (s *Service) observePass(operation string, scored, skipped int, start time.Time) {
	metrics.RankingDuration.WithLabelValues(operation, s.strategy.Name()).
		Observe(time.Since(start).Seconds())
	metrics.CandidatesTotal.WithLabelValues(operation, "scored").Add(float64(scored))
	metrics.CandidatesTotal.WithLabelValues(operation, "skipped").Add(float64(skipped))

	if skipped > 0 {
		s.logger.Info("ranking pass skipped candidates",
			zap.String("operation", operation),
			zap.String("strategy", s.strategy.Name()),
			zap.Int("scored", scored),
			zap.Int("skipped", skipped),
		)
	}
}

// sortByScore orders results by score descending. The sort is stable, so
// equal scores keep their candidate enumeration order (first-seen subject,
// then first-seen counterpart).
func sortByScore[T any](results []T, score func(*T) float64) {
	sort.SliceStable(results, func(i, j int) bool {
		return score(&results[i]) > score(&results[j])
	})
}

func truncate[T any](results []T, limit int) []T {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
