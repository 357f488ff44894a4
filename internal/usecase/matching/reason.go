package matching

import (
	"strings"

	"github.com/campusbarter/tradematch/internal/domain"
)

// Generic fallback sentences. Reason composition must never abort a ranking
// pass, so every branch below ends in a plain string.
const (
	reasonHighCompatibility = "These items are highly compatible based on their descriptions and categories."
	reasonSomeSimilarities  = "These items have some similarities that might interest you."
	reasonLowConfidence     = "This item might be of interest based on your listings."

	reasonNeedClose   = "This item closely matches your description and should meet your needs."
	reasonNeedPartial = "This item might partially meet your needs."
	reasonNeedGeneric = "This item might meet your needs."
)

// itemMatchReason buckets a semantic item-to-item score into a short
// justification. In the middle band a category match wins over tag overlap;
// the precedence is fixed.
func itemMatchReason(subject, candidate *domain.Item, score float64) string {
	switch {
	case score > 0.8:
		return reasonHighCompatibility
	case score > 0.6:
		if subject.Category != "" && subject.Category == candidate.Category {
			return "Both items are in the same category: " + subject.Category
		}
		if shared := subject.SharedTags(candidate); len(shared) > 0 {
			return "Items share common tags: " + strings.Join(shared, ", ")
		}
		return reasonSomeSimilarities
	default:
		return reasonLowConfidence
	}
}

// needMatchReason buckets a semantic need-to-item score.
func needMatchReason(item *domain.Item, score float64) string {
	switch {
	case score > 0.8:
		return reasonNeedClose
	case score > 0.6:
		if item.Category == "" {
			return reasonNeedGeneric
		}
		return "This " + strings.ToLower(item.Category) + " seems to match what you're looking for."
	default:
		return reasonNeedPartial
	}
}
