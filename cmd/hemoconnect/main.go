package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hemoconnect/hemoconnect/internal/badges"
	"github.com/hemoconnect/hemoconnect/internal/config"
	"github.com/hemoconnect/hemoconnect/internal/content"
	"github.com/hemoconnect/hemoconnect/internal/db"
	dbRedis "github.com/hemoconnect/hemoconnect/internal/db/redis"
	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/inference"
	logpkg "github.com/hemoconnect/hemoconnect/internal/logger"
	"github.com/hemoconnect/hemoconnect/internal/matching"
	"github.com/hemoconnect/hemoconnect/internal/metrics"
	"github.com/hemoconnect/hemoconnect/internal/ratelimit"
	badgerepo "github.com/hemoconnect/hemoconnect/internal/repository/badge"
	commentrepo "github.com/hemoconnect/hemoconnect/internal/repository/comment"
	"github.com/hemoconnect/hemoconnect/internal/repository/embcache"
	notificationrepo "github.com/hemoconnect/hemoconnect/internal/repository/notification"
	postrepo "github.com/hemoconnect/hemoconnect/internal/repository/post"
	profilerepo "github.com/hemoconnect/hemoconnect/internal/repository/profile"
	"github.com/hemoconnect/hemoconnect/internal/search"
	"github.com/hemoconnect/hemoconnect/internal/tasks"
	chiTransport "github.com/hemoconnect/hemoconnect/internal/transport/chi"
	hfTransport "github.com/hemoconnect/hemoconnect/internal/transport/hf"
	openaiEmb "github.com/hemoconnect/hemoconnect/internal/transport/openai"
	"github.com/hemoconnect/hemoconnect/internal/version"
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

	logger.Info("Starting hemoconnect API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
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

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	if err := ensureIndexes(ctx, store); err != nil {
		logger.Fatal("Failed to create search indexes", zap.Error(err))
	}

	// Build the inference client — composition root.
	// Pass nil interfaces (not typed nil pointers!) when a provider is
	// unconfigured. Go gotcha: (*Embedder)(nil) wrapped in EmbedProvider != nil.
	var embedProvider inference.EmbedProvider
	if cfg.Inference.Embedding.APIKey != "" {
		embedProvider = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Inference.Embedding.APIKey,
			BaseURL:    cfg.Inference.Embedding.BaseURL,
			Model:      cfg.Inference.Embedding.Model,
			Dimensions: domain.EmbeddingDim,
		})
		// Cache computed embeddings so repeated texts skip the provider.
		embedProvider = embcache.New(embedProvider, store, logger)
	}
	var textProvider inference.TextProvider
	if cfg.Inference.HF.Token != "" {
		textProvider = hfTransport.NewClient(&hfTransport.Config{
			Token:               cfg.Inference.HF.Token,
			BaseURL:             cfg.Inference.HF.BaseURL,
			ToxicityModel:       cfg.Inference.HF.ToxicityModel,
			ClassificationModel: cfg.Inference.HF.ClassificationModel,
			SummarizationModel:  cfg.Inference.HF.SummarizationModel,
		})
	}
	infClient := inference.New(embedProvider, textProvider, logger,
		inference.WithMaxAttempts(cfg.Inference.MaxRetries))
	logger.Info("Inference client created",
		zap.Bool("embedding_enabled", embedProvider != nil),
		zap.Bool("text_models_enabled", textProvider != nil),
	)

	// Rate limiter
	rules := make(map[string]ratelimit.Rule, len(cfg.RateLimits))
	for action, rl := range cfg.RateLimits {
		rules[action] = ratelimit.Rule{
			MaxRequests: rl.MaxRequests,
			Window:      time.Duration(rl.WindowMs) * time.Millisecond,
		}
	}
	limiter := ratelimit.New(rules)

	// Repositories (domain-native, no adapters)
	profiles := profilerepo.New(store)
	posts := postrepo.New(store)
	comments := commentrepo.New(store)
	awards := badgerepo.New(store)
	notifications := notificationrepo.New(store)

	// Background task runner for post-write enrichment
	runner := tasks.NewRunner(logger)

	// Domain services
	badgeSvc := badges.New(awards, notifications, posts)
	contentSvc := content.New(posts, comments, notifications, limiter, infClient, badgeSvc, runner, content.Config{
		ToxicityThreshold:  cfg.Moderation.ToxicityThreshold,
		TaggingThreshold:   cfg.Tagging.Threshold,
		TaggingMaxLabels:   cfg.Tagging.MaxLabels,
		SummaryMinComments: cfg.Summary.MinComments,
		SummaryStaleAfter:  time.Duration(cfg.Summary.StaleAfterSec) * time.Second,
	})
	searchSvc := search.New(posts, infClient, search.Config{
		MinSimilarity: cfg.Search.MinSimilarity,
		MaxResults:    cfg.Search.MaxResults,
	})
	matchingSvc := matching.New(profiles, infClient, matching.Config{
		CandidatePool: cfg.Matching.CandidatePool,
		TopN:          cfg.Matching.TopN,
	})

	// Create chi server
	server := chiTransport.NewServer(contentSvc, searchSvc, matchingSvc, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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

	// Drain in-flight enrichment tasks before exiting.
	runner.Close()

	logger.Info("Server stopped gracefully")
}

// ensureIndexes creates the FT indexes used by the repositories,
// tolerating ones that already exist.
func ensureIndexes(ctx context.Context, store db.Store) error {
	defs := []*db.IndexDefinition{
		profilerepo.IndexDefinition(),
		postrepo.IndexDefinition(),
		commentrepo.IndexDefinition(),
		notificationrepo.IndexDefinition(),
	}
	for _, def := range defs {
		if err := store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
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
