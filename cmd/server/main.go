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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/product-recommender/internal/cache"
	"github.com/actuallystonmai/product-recommender/internal/config"
	"github.com/actuallystonmai/product-recommender/internal/handler"
	"github.com/actuallystonmai/product-recommender/internal/logging"
	"github.com/actuallystonmai/product-recommender/internal/repository"
	"github.com/actuallystonmai/product-recommender/internal/router"
	"github.com/actuallystonmai/product-recommender/internal/service"
	"github.com/actuallystonmai/product-recommender/internal/store"
	"github.com/actuallystonmai/product-recommender/seeds"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	command := ""
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	// ------------ PostgreSQL ---------------
	pool, err := connectDB(ctx, cfg)
	if err != nil {
		if command != "" {
			logging.Fatal().Err(err).Msg("database required")
		}
		logging.Warn().Err(err).Msg("database unavailable, serving in degraded mode")
	}
	if pool != nil {
		defer pool.Close()
	}

	// for migrate-down using CLI command
	if command == "migrate-down" {
		if err := runMigration(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
			logging.Fatal().Err(err).Msg("failed to migrate down")
		}
		logging.Info().Msg("migrations dropped")
		return
	}

	var src service.DataSource = repository.Unavailable{}
	if pool != nil {
		// ------------ Run Migrations ---------------
		if err := runMigration(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
			logging.Fatal().Err(err).Msg("failed to migrate up")
		}
		// ------------ Setup Seed Data ---------------
		if err := checkSeed(ctx, pool); err != nil {
			logging.Fatal().Err(err).Msg("failed to check seed")
		}
		src = repository.NewRepository(pool)
	}

	// ------------ Model store ---------------
	var models service.ModelStore
	if cfg.ModelPath != "" {
		s, err := store.NewStore(cfg.ModelPath)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to open model store")
		}
		models = s
	} else {
		logging.Warn().Msg("MODEL_PATH empty, trained models will not be persisted")
	}

	// ------------ Redis ---------------
	rc := connectRedis(ctx, cfg)
	if rc != nil {
		defer rc.Close()
	}

	svc := service.NewService(src, models, rc)

	if command == "train" {
		metrics, err := svc.Train(ctx)
		if err != nil {
			logging.Fatal().Err(err).Msg("training failed")
		}
		logging.Info().Interface("metrics", metrics).Msg("training complete")
		return
	}
	if command != "" {
		logging.Fatal().Str("command", command).Msg("unknown command, expected train or migrate-down")
	}

	if err := svc.LoadModels(); err != nil {
		logging.Error().Err(err).Msg("failed to load models, serving fallbacks only")
	}

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(handler.NewHandler(svc), router.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			TrainRateLimit: cfg.TrainRateLimit,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func connectDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := waitForDB(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	logging.Info().Msg("connected to PostgreSQL")
	return pool, nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logging.Info().Msgf("waiting for database... (%d/30)", i+1)
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

// connectRedis returns nil when caching is disabled or Redis is unreachable;
// a nil *cache.Cache caches nothing.
func connectRedis(ctx context.Context, cfg *config.Config) *cache.Cache {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logging.Warn().Err(err).Msg("invalid REDIS_URL, caching disabled")
		return nil
	}
	c := cache.NewCache(redis.NewClient(opts), cfg.CacheTTL)
	if err := c.Ping(ctx); err != nil {
		logging.Warn().Err(err).Msg("redis unavailable, caching disabled")
		c.Close()
		return nil
	}
	logging.Info().Msg("connected to Redis")
	return c
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	logging.Info().Str("file", path).Msg("migration applied")
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("check products count: %w", err)
	}
	if count > 0 {
		logging.Info().Int("products", count).Msg("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, pool)
}
