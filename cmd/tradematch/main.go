package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/campusbarter/tradematch/internal/config"
	"github.com/campusbarter/tradematch/internal/db"
	dbRedis "github.com/campusbarter/tradematch/internal/db/redis"
	"github.com/campusbarter/tradematch/internal/domain"
	logpkg "github.com/campusbarter/tradematch/internal/logger"
	"github.com/campusbarter/tradematch/internal/metrics"
	budgetrepo "github.com/campusbarter/tradematch/internal/repository/budget"
	"github.com/campusbarter/tradematch/internal/repository/catalog"
	"github.com/campusbarter/tradematch/internal/repository/embcache"
	"github.com/campusbarter/tradematch/internal/transport/httpapi"
	openaiTransport "github.com/campusbarter/tradematch/internal/transport/openai"
	analysisuc "github.com/campusbarter/tradematch/internal/usecase/analysis"
	embeddinguc "github.com/campusbarter/tradematch/internal/usecase/embedding"
	healthuc "github.com/campusbarter/tradematch/internal/usecase/health"
	matchinguc "github.com/campusbarter/tradematch/internal/usecase/matching"
	"github.com/campusbarter/tradematch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tradematch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchingMetrics()

	catalogRepo := catalog.New(store, cfg.Storage.KeyPrefix)

	// Strategy selection happens once at startup: the provider credential
	// decides semantic vs heuristic for the process lifetime.
	var (
		strategy        matchinguc.Strategy
		analyzer        analysisuc.Analyzer
		embeddingHealth healthuc.EmbeddingChecker
	)
	if cfg.SemanticEnabled() {
		embedder, healthChecker := buildEmbedder(ctx, &cfg, store, logger)
		strategy = matchinguc.NewSemanticStrategy(embedder, cfg.Matching.EmbedWorkers, logger)
		analyzer = openaiTransport.NewAnalyzer(&openaiTransport.AnalyzerConfig{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.AnalysisModel,
			Timeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		embeddingHealth = healthChecker
		logger.Info("Semantic strategy enabled",
			zap.String("model", cfg.Embedding.Model),
			zap.String("analysis_model", cfg.Embedding.AnalysisModel),
		)
	} else {
		strategy = matchinguc.NewHeuristicStrategy()
		logger.Warn("No embedding API key configured, using heuristic fallback strategy")
	}

	matchingSvc := matchinguc.New(catalogRepo, strategy, logger).
		WithLimits(cfg.Matching.DefaultLimit, cfg.Matching.MaxLimit)
	analysisSvc := analysisuc.New(catalogRepo, analyzer, logger)
	healthSvc := healthuc.New(store, embeddingHealth, strategy.Name())

	server := httpapi.NewServer(matchingSvc, analysisSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(httpapi.JWTAuthMiddleware(cfg.Auth.JWTSecret))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(
	ctx context.Context, cfg *config.Config, store db.Store, logger *zap.Logger,
) (domain.Embedder, healthuc.EmbeddingChecker) {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	cached := embcache.New(
		base, store, cfg.Storage.KeyPrefix,
		time.Duration(cfg.Embedding.CacheTTLHours)*time.Hour,
		metrics.EmbeddingCacheTotal, logger,
	)

	// budgetChecker stays a nil interface when no limits are configured.
	var budgetChecker embeddinguc.BudgetChecker
	budgetCfg := cfg.Embedding.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := embeddinguc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = embeddinguc.BudgetActionReject
		}
		budgetChecker = embeddinguc.NewBudgetTracker(
			cfg.Storage.KeyPrefix, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit,
			action, logger,
		).WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}

	embedder := embeddinguc.NewInstrumentedEmbedder(cached, cfg.Embedding.Model, budgetChecker, logger)
	return embedder, base
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
