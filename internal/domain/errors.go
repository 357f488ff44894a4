package domain

import "errors"

var (
	// ErrItemNotFound signals a missing catalog item.
	ErrItemNotFound = errors.New("item not found")
	// ErrNotOwner signals an item that does not belong to the caller.
	ErrNotOwner = errors.New("item not owned by caller")
	// ErrAnalysisUnavailable signals that listing analysis has no heuristic
	// equivalent and the semantic strategy is not configured.
	ErrAnalysisUnavailable = errors.New("listing analysis unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrUnauthorized signals a request without a valid caller identity.
	ErrUnauthorized = errors.New("unauthorized")
)
