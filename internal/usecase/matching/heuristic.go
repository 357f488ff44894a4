package matching

import (
	"context"
	"strings"

	"github.com/campusbarter/tradematch/internal/domain"
)

// Heuristic score constants. These are a reproducibility contract shared
// with the marketplace test fixtures; do not retune them.
const (
	heuristicPairBase      = 0.5
	heuristicCategoryBoost = 0.3
	heuristicTagBoost      = 0.2

	heuristicNeedBase     = 0.3
	heuristicKeywordBoost = 0.1
	heuristicNeedScoreCap = 0.9
)

// HeuristicStrategy scores candidates without any external provider, from
// category equality, tag overlap and keyword intersection. Selected when no
// embedding credential is configured. Unlike the semantic scores, these are
// not calibrated probabilities, so reasons name the triggering signal
// instead of a score bucket.
type HeuristicStrategy struct{}

// NewHeuristicStrategy creates the provider-free fallback strategy.
func NewHeuristicStrategy() *HeuristicStrategy {
	return &HeuristicStrategy{}
}

// Name implements Strategy.
func (h *HeuristicStrategy) Name() string { return "heuristic" }

// SupportsAnalysis implements Strategy. Listing analysis has no heuristic
// equivalent.
func (h *HeuristicStrategy) SupportsAnalysis() bool { return false }

// BeginItemPass implements Strategy. No preparation is needed; scoring is a
// pure function of the two records.
func (h *HeuristicStrategy) BeginItemPass(
	_ context.Context, subjects, counterparts []domain.Item,
) ItemPass {
	return &heuristicItemPass{subjects: subjects, counterparts: counterparts}
}

// BeginNeedPass implements Strategy.
func (h *HeuristicStrategy) BeginNeedPass(
	_ context.Context, need string, items []domain.Item,
) NeedPass {
	return &heuristicNeedPass{tokens: needTokens(need), items: items}
}

type heuristicItemPass struct {
	subjects     []domain.Item
	counterparts []domain.Item
}

func (p *heuristicItemPass) Score(subjectIdx, counterpartIdx int) domain.MatchOutcome {
	subject := &p.subjects[subjectIdx]
	candidate := &p.counterparts[counterpartIdx]

	score := heuristicPairBase
	sameCategory := subject.Category == candidate.Category
	if sameCategory {
		score += heuristicCategoryBoost
	}
	shared := subject.SharedTags(candidate)
	if len(shared) > 0 {
		score += heuristicTagBoost
	}

	// Category match wins as the stated reason even when tags also overlap.
	var reason string
	switch {
	case sameCategory:
		reason = "Items are in the same category: " + subject.Category
	case len(shared) > 0:
		reason = "Items share common tags: " + strings.Join(shared, ", ")
	default:
		reason = "Items may be of interest based on general compatibility"
	}

	return domain.Scored(score, reason)
}

type heuristicNeedPass struct {
	tokens []string
	items  []domain.Item
}

func (p *heuristicNeedPass) Score(itemIdx int) domain.MatchOutcome {
	item := &p.items[itemIdx]

	words := make(map[string]struct{})
	for _, w := range strings.Fields(item.KeywordText()) {
		words[w] = struct{}{}
	}

	var matched []string
	for _, tok := range p.tokens {
		if _, ok := words[tok]; ok {
			matched = append(matched, tok)
		}
	}

	score := heuristicNeedBase + heuristicKeywordBoost*float64(len(matched))
	if score > heuristicNeedScoreCap {
		score = heuristicNeedScoreCap
	}

	reason := "May partially meet your needs"
	if len(matched) > 0 {
		reason = "Matched keywords: " + strings.Join(matched, ", ")
	}

	return domain.Scored(score, reason)
}

// needTokens lower-cases and whitespace-splits a need description,
// deduplicating while keeping first-seen order.
func needTokens(need string) []string {
	fields := strings.Fields(strings.ToLower(need))
	seen := make(map[string]struct{}, len(fields))
	tokens := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}
