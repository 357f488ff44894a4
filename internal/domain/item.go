package domain

import "strings"

// Catalog item statuses. Only available items participate in matching.
const (
	StatusAvailable = "available"
	StatusPending   = "pending"
	StatusTraded    = "traded"
)

// Item is the read-only catalog projection consumed by the matching engine.
// The engine never mutates catalog state; trade lifecycle, ownership checks
// and persistence belong to the marketplace backend.
type Item struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Category    string
	Condition   string
	Tags        []string
	Status      string
}

// Available reports whether the item may be scored in a ranking pass.
func (it *Item) Available() bool {
	return it.Status == StatusAvailable
}

// ComposedText renders the item into the canonical embedding input.
// Field order and formatting are a reproducibility contract: the same item
// must always produce the same text, so that a deterministic provider yields
// the same vector across calls. Condition and Tags appear only when set;
// tags keep their insertion order.
func (it *Item) ComposedText() string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(it.Title)
	b.WriteString("\nDescription: ")
	b.WriteString(it.Description)
	b.WriteString("\nCategory: ")
	b.WriteString(it.Category)
	if it.Condition != "" {
		b.WriteString("\nCondition: ")
		b.WriteString(it.Condition)
	}
	if len(it.Tags) > 0 {
		b.WriteString("\nTags: ")
		b.WriteString(strings.Join(it.Tags, ","))
	}
	return b.String()
}

// KeywordText returns the lower-cased title/description/tags blob used by the
// heuristic need-to-item scorer for keyword containment checks.
func (it *Item) KeywordText() string {
	parts := []string{it.Title, it.Description}
	parts = append(parts, it.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// SharedTags returns the case-sensitive tag intersection with other,
// preserving the receiver's insertion order.
func (it *Item) SharedTags(other *Item) []string {
	if len(it.Tags) == 0 || len(other.Tags) == 0 {
		return nil
	}
	otherSet := make(map[string]struct{}, len(other.Tags))
	for _, t := range other.Tags {
		otherSet[t] = struct{}{}
	}
	var shared []string
	for _, t := range it.Tags {
		if _, ok := otherSet[t]; ok {
			shared = append(shared, t)
		}
	}
	return shared
}
