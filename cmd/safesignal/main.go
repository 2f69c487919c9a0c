package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	redis "github.com/redis/go-redis/v9"

	"github.com/safesignal/safesignal/config"
	"github.com/safesignal/safesignal/internal/api"
	"github.com/safesignal/safesignal/internal/database"
	"github.com/safesignal/safesignal/internal/feed"
	"github.com/safesignal/safesignal/internal/logger"
	"github.com/safesignal/safesignal/internal/metrics"
	middlewares "github.com/safesignal/safesignal/internal/middleware"
	"github.com/safesignal/safesignal/internal/pipeline"
	"github.com/safesignal/safesignal/internal/ratelimit"
	"github.com/safesignal/safesignal/internal/riskcache"
	"github.com/safesignal/safesignal/internal/scoring"
	"github.com/safesignal/safesignal/internal/store"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting SafeSignal application",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close(ctx)

	// Initialize store
	dataStore := store.New(db)

	// Optional Redis client, shared by the rate limiter and the risk cache.
	// The service runs without it; both consumers degrade gracefully.
	var redisClient *redis.Client
	var limiter *ratelimit.Limiter
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Invalid REDIS_URL", "error", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable at startup, continuing anyway", "error", err)
		}
		if cfg.Server.RateLimitRPM > 0 {
			limiter = ratelimit.NewLimiterWithClient(redisClient, cfg.Server.RateLimitRPM)
		}
	} else {
		logger.Info("REDIS_URL not set; rate limiting and risk caching disabled")
	}

	// Country risk lookups go through the read-through cache
	riskProvider := riskcache.New(redisClient, dataStore, cfg.Scoring.RiskCacheTTL)

	// Initialize scorer
	scorer := scoring.NewScorer(riskProvider, dataStore, dataStore, cfg.Scoring, clockwork.NewRealClock())

	// Initialize the incident ingestion pipeline
	if cfg.Feed.URL != "" {
		src := feed.NewSource(cfg.Feed.SourceLabel, cfg.Feed.URL, cfg.Feed.PollInterval)
		incidentPipeline := pipeline.New(dataStore, []pipeline.Source{src}, cfg.Feed, clockwork.NewRealClock())

		go func() {
			if err := incidentPipeline.Run(ctx); err != nil && err != context.Canceled {
				logger.Error("Pipeline error", "error", err)
			}
		}()
	} else {
		logger.Warn("FEED_URL not set; incident ingestion disabled")
	}

	// Setup HTTP server
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)
	r.Use(middlewares.CORS(cfg.Server.CORSOrigins))
	r.Use(middlewares.RateLimit(limiter))

	// Initialize API handlers
	apiHandler := api.NewHandler(dataStore, scorer, Version, BuildTime, GitCommit)
	apiHandler.RegisterRoutes(r)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("Server exited")
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
