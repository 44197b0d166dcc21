package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/catalog"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/config"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/metrics"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/observability"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/pricing"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/quote"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/ratecheck"
	"github.com/felipesbonatti/case-credit-risk-prediction/internal/store"
)

func main() {
	cfg := config.Load()
	logger := observability.InitLogger(cfg.Log.Level, cfg.Log.Format)
	logger = logger.With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Initialize rate store ---
	var rates store.RateStore
	var cleanup []func()

	if cfg.DatabaseURL != "" {
		if cfg.MigrationsDir != "" {
			if err := store.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
				slog.Error("migrations failed", "err", err)
				os.Exit(1)
			}
			slog.Info("migrations applied", "dir", cfg.MigrationsDir)
		}

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		rates = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")
	} else {
		slog.Warn("DATABASE_URL not set, using built-in product rates")
		rates = store.NewMemoryStore(catalog.DefaultProducts()...)
	}

	// --- Quote cache ---
	var cache store.QuoteCache
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		cache = store.NewRedisQuoteCache(rdb, cfg.QuoteCacheTTL)
		slog.Info("Redis quote cache enabled", "ttl", cfg.QuoteCacheTTL)
	} else {
		cache = store.NewMemoryQuoteCache(cfg.QuoteCacheTTL)
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Catalog and engine ---
	loadCtx, cancelLoad := context.WithTimeout(ctx, 10*time.Second)
	cat, err := catalog.Load(loadCtx, rates, logger)
	cancelLoad()
	if err != nil {
		slog.Error("catalog load failed", "err", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "products", len(cat.Products()))

	engine := pricing.NewEngine(cat, cfg.Calculator())
	validator := ratecheck.NewValidator(cat)

	// --- WebSocket hub ---
	wsHub := quote.NewWSHub()
	go wsHub.Run(ctx)

	// --- Quote service ---
	quoteSvc := quote.NewService(engine, validator, cache, wsHub, quote.Options{
		BatchConcurrency: cfg.Batch.Concurrency,
		BatchMaxSize:     cfg.Batch.MaxSize,
	})

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for the dashboard.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":%q}`, cfg.ServiceName)
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", quoteSvc.Mount)

	// --- Server ---
	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("credit-pricing listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down credit-pricing...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	stop()
	fmt.Println("credit-pricing stopped")
}
