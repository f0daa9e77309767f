package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apphttp "globe_backend/internal/http"
	"globe_backend/internal/http/router"
	"globe_backend/internal/maps"
	"globe_backend/internal/messages"
	"globe_backend/internal/nominatim"
	"globe_backend/migrations"
	"globe_backend/platform/ai/gemini"
	"globe_backend/platform/cache"
	"globe_backend/platform/config"
	"globe_backend/platform/db"
	"globe_backend/platform/logger"
	"globe_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func(ctx context.Context) error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func(ctx context.Context) error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	health := []apphttp.HealthChecker{db.NewPoolAdapter(pool)}
	geocodeCache, closeCache := initGeocodeCache(ctx, cfg, log)
	if closeCache != nil {
		defer closeCache()
	}
	if checker, ok := geocodeCache.(apphttp.HealthChecker); ok {
		health = append(health, checker)
	}

	geocoder := nominatim.NewClient(cfg, geocodeCache, cfg.GetGeocodeCacheTTL(), log)
	log.Info("nominatim client initialized", "baseURL", cfg.GetNominatimBaseURL(), "rateLimit", cfg.GetNominatimRateLimit())

	narrator, err := gemini.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize gemini client", "error", err)
		panic("failed to initialize gemini client: " + err.Error())
	}
	if err := narrator.ValidateModel(ctx); err != nil {
		log.Error("configured gemini model is unavailable", "model", narrator.Model(), "error", err)
		panic("configured gemini model is unavailable: " + err.Error())
	}
	if narrator.Enabled() {
		log.Info("gemini model validated", "model", narrator.Model())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	mapsModule := maps.NewModule(geocoder, narrator, val, log)
	messagesModule := messages.NewModule(pool, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: health,
		Modules: []apphttp.Module{
			mapsModule,
			messagesModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

// initGeocodeCache connects to Redis when configured. Caching is optional:
// any failure degrades to no caching rather than aborting startup.
func initGeocodeCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (cache.Cache, func()) {
	if !cfg.IsCacheEnabled() {
		log.Warn("REDIS_URL not configured; geocode caching disabled")
		return cache.Nop{}, nil
	}

	redisCache, err := cache.NewRedis(ctx, cfg, "globe:geocode:")
	if err != nil {
		log.Error("failed to initialize geocode cache; continuing without it", "error", err)
		return cache.Nop{}, nil
	}
	log.Info("geocode cache initialized", "ttl", cfg.GetGeocodeCacheTTL())

	return redisCache, func() {
		_ = redisCache.Close()
	}
}

// withRetry runs fn up to attempts times with exponential backoff, for
// dependencies that may still be starting (database in docker compose).
func withRetry(ctx context.Context, log *logger.Logger, name string, attempts uint64, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	attempt := 0
	backoff := retry.WithMaxRetries(attempts-1, retry.NewExponential(baseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx); err != nil {
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
