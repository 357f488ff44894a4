// Package httpapi exposes the matching engine over HTTP: trade
// recommendations, instant need matching and listing analysis.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campusbarter/tradematch/internal/domain"
	analysisuc "github.com/campusbarter/tradematch/internal/usecase/analysis"
	healthuc "github.com/campusbarter/tradematch/internal/usecase/health"
	matchinguc "github.com/campusbarter/tradematch/internal/usecase/matching"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the matching API.
type Server struct {
	matching      *matchinguc.Service
	analysis      *analysisuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	matching *matchinguc.Service,
	analysis *analysisuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		matching: matching,
		analysis: analysis,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, "item_not_found"),
		sentinelHandler(domain.ErrNotOwner, http.StatusForbidden, "forbidden"),
		sentinelHandler(domain.ErrAnalysisUnavailable, http.StatusBadRequest, "analysis_unavailable"),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired, "embedding_quota_exceeded"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"),
	}
	return s
}

// Routes registers all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1/matching", func(r chi.Router) {
		r.Get("/recommendations", s.Recommendations)
		r.Post("/instant-matches", s.InstantMatches)
		r.Get("/item-analysis/{itemID}", s.ItemAnalysis)
	})
}

// itemJSON is the wire representation of a catalog item.
type itemJSON struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Status      string   `json:"status"`
}

type recommendationJSON struct {
	UserItem        itemJSON `json:"user_item"`
	RecommendedItem itemJSON `json:"recommended_item"`
	Score           float64  `json:"score"`
	Reason          string   `json:"reason"`
}

type instantMatchJSON struct {
	Item   itemJSON `json:"item"`
	Score  float64  `json:"score"`
	Reason string   `json:"reason"`
}

// Recommendations handles GET /api/v1/matching/recommendations.
func (s *Server) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		s.handleDomainError(w, domain.ErrUnauthorized)
		return
	}

	itemID := r.URL.Query().Get("item_id")
	limit := parseLimit(r.URL.Query().Get("limit"))

	ctx, usage := domain.NewContextWithUsage(r.Context())
	recs, err := s.matching.Recommendations(ctx, userID, itemID, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]recommendationJSON, len(recs))
	for i := range recs {
		items[i] = recommendationJSON{
			UserItem:        itemToJSON(&recs[i].UserItem),
			RecommendedItem: itemToJSON(&recs[i].RecommendedItem),
			Score:           recs[i].Score,
			Reason:          recs[i].Reason,
		}
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, items)
}

// InstantMatches handles POST /api/v1/matching/instant-matches.
func (s *Server) InstantMatches(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserIDFromContext(r.Context()); !ok {
		s.handleDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req struct {
		Description string `json:"description"`
		Limit       any    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Need description is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	matches, err := s.matching.InstantMatch(ctx, req.Description, coerceLimit(req.Limit))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]instantMatchJSON, len(matches))
	for i := range matches {
		items[i] = instantMatchJSON{
			Item:   itemToJSON(&matches[i].Item),
			Score:  matches[i].Score,
			Reason: matches[i].Reason,
		}
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, items)
}

// ItemAnalysis handles GET /api/v1/matching/item-analysis/{itemID}.
func (s *Server) ItemAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		s.handleDomainError(w, domain.ErrUnauthorized)
		return
	}

	itemID := chi.URLParam(r, "itemID")

	analysis, err := s.analysis.ItemAnalysis(r.Context(), userID, itemID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":   report.Status,
		"strategy": report.Strategy,
		"checks":   report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// parseLimit maps a missing or non-numeric limit to 0; the engine then
// applies its default.
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// coerceLimit accepts the JSON limit as a number or numeric string; anything
// else falls back to 0 (engine default).
func coerceLimit(v any) int {
	switch limit := v.(type) {
	case float64:
		return int(limit)
	case string:
		return parseLimit(limit)
	default:
		return 0
	}
}

func itemToJSON(item *domain.Item) itemJSON {
	return itemJSON{
		ID:          item.ID,
		UserID:      item.OwnerID,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		Condition:   item.Condition,
		Tags:        item.Tags,
		Status:      item.Status,
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorJSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorJSON{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrItemNotFound,
		domain.ErrNotOwner,
		domain.ErrAnalysisUnavailable,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrUnauthorized,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
