// Command docsearch starts the document search HTTP service.
//
// The service ingests documents via POST /api/v1/documents (running them
// through the text analyzer and persisting to PostgreSQL) and serves ranked
// TF-IDF search results via GET /api/v1/search, with computed results cached
// in Redis for 24 hours. Search and ingest events are published to Kafka and
// aggregated for GET /api/v1/analytics.
//
// Usage:
//
//	go run ./cmd/docsearch [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/searchfoundry/docsearch/internal/analytics"
	"github.com/searchfoundry/docsearch/internal/document"
	"github.com/searchfoundry/docsearch/internal/ingest"
	"github.com/searchfoundry/docsearch/internal/searcher"
	"github.com/searchfoundry/docsearch/internal/searcher/cache"
	searchhandler "github.com/searchfoundry/docsearch/internal/searcher/handler"
	"github.com/searchfoundry/docsearch/pkg/config"
	"github.com/searchfoundry/docsearch/pkg/health"
	"github.com/searchfoundry/docsearch/pkg/kafka"
	"github.com/searchfoundry/docsearch/pkg/logger"
	"github.com/searchfoundry/docsearch/pkg/metrics"
	"github.com/searchfoundry/docsearch/pkg/middleware"
	"github.com/searchfoundry/docsearch/pkg/postgres"
	pkgredis "github.com/searchfoundry/docsearch/pkg/redis"
	"github.com/searchfoundry/docsearch/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting docsearch", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *postgres.Client
	err = resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
		var connErr error
		db, connErr = postgres.New(cfg.Postgres)
		return connErr
	})
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)

	store := document.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	if n, err := store.Count(ctx); err == nil {
		slog.Info("document collection ready", "documents", n)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	var queryCache searcher.Cache
	var adminCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, result caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		adminCache = cache.New(redisClient, cfg.Redis)
		queryCache = adminCache
		slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, 100, 0)
	collector.Start(ctx)
	defer collector.Close()

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := aggregator.Start(ctx, consumer); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	analyticsH := analytics.NewHandler(aggregator)

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	searchSvc := searcher.New(store, queryCache, m)
	searchH := searchhandler.New(searchSvc, adminCache, collector)
	ingestSvc := ingest.New(store, ingest.NewValidator(cfg.Ingest), m)
	ingestH := ingest.NewHandler(ingestSvc, store, collector, cfg.Ingest.SampleDataDir)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", searchH.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", searchH.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", searchH.CacheInvalidate)
	mux.HandleFunc("POST /api/v1/documents", ingestH.Ingest)
	mux.HandleFunc("POST /api/v1/documents/bulk", ingestH.IngestBulk)
	mux.HandleFunc("POST /api/v1/documents/load-sample", ingestH.LoadSamples)
	mux.HandleFunc("GET /api/v1/documents", ingestH.List)
	mux.HandleFunc("GET /api/v1/documents/{id}", ingestH.Get)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("docsearch listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("docsearch stopped")
}
