package domain

// Skip causes attached to skipped match outcomes.
const (
	SkipEmbeddingUnavailable = "embedding unavailable"
	SkipZeroVector           = "zero vector"
)

// MatchOutcome is the per-candidate scoring result: a score with a
// human-readable reason, or a skip with its cause. Modeling skips as values
// (instead of swallowed errors) lets the engine count them and lets tests
// assert on skip behavior.
type MatchOutcome struct {
	Score     float64
	Reason    string
	Skipped   bool
	SkipCause string
}

// Scored builds a successful outcome.
func Scored(score float64, reason string) MatchOutcome {
	return MatchOutcome{Score: score, Reason: reason}
}

// Skipped builds a skipped outcome with its cause.
func Skipped(cause string) MatchOutcome {
	return MatchOutcome{Skipped: true, SkipCause: cause}
}

// Recommendation pairs one of the caller's items with a counterpart item
// from another user, ranked by compatibility.
type Recommendation struct {
	UserItem        Item
	RecommendedItem Item
	Score           float64
	Reason          string
}

// InstantMatch pairs a free-text need with a catalog item.
type InstantMatch struct {
	Item   Item
	Score  float64
	Reason string
}
