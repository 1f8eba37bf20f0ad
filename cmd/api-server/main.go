package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maho-na510/aquarium-visit-log/database"
	"github.com/maho-na510/aquarium-visit-log/internal/api/handler"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"
	"github.com/maho-na510/aquarium-visit-log/internal/config"
	"github.com/maho-na510/aquarium-visit-log/internal/geo"
	"github.com/maho-na510/aquarium-visit-log/internal/ogimage"
	"github.com/maho-na510/aquarium-visit-log/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// 2. Optional redis for the geo index and the og:image cache
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, falling back to sql geo index and no og:image cache", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	index, err := newGeoIndex(ctx, db, rdb, logger)
	if err != nil {
		return err
	}

	ogOpts := ogimage.Options{
		Timeout:       cfg.OGFetchTimeout,
		RatePerSecond: cfg.OGFetchRate,
		Logger:        logger,
	}
	if rdb != nil {
		ogOpts.Cache = ogimage.NewRedisCache(rdb, cfg.CacheDuration())
	}
	og := ogimage.New(ogOpts)

	store, err := storage.NewDiskStore(cfg.StoragePath, cfg.PublicURL)
	if err != nil {
		return err
	}

	// 3. Repositories and services
	aquariumRepo := repository.NewAquariumRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	userRepo := repository.NewUserRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	rankingRepo := repository.NewRankingRepository(db)

	services := handler.Services{
		Auth:      service.NewAuthService(userRepo, cfg, logger),
		Aquariums: service.NewAquariumService(aquariumRepo, visitRepo, wishlistRepo, attachmentRepo, index, og, store, logger),
		Visits:    service.NewVisitService(visitRepo, aquariumRepo, attachmentRepo, store, logger),
		Wishlist:  service.NewWishlistService(wishlistRepo, aquariumRepo),
		Users:     service.NewUserService(userRepo, visitRepo, wishlistRepo, aquariumRepo, attachmentRepo, store, logger),
		Rankings:  service.NewRankingService(rankingRepo, aquariumRepo, attachmentRepo, store, nil),
	}

	// 4. HTTP server
	router := handler.NewRouter(cfg, services, func(ctx context.Context) error {
		return sqlDB.PingContext(ctx)
	}, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server_started", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server_stopped_gracefully")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// newGeoIndex seeds the redis index from the database, or uses SQL when redis is off.
func newGeoIndex(ctx context.Context, db *gorm.DB, rdb *redis.Client, logger *slog.Logger) (geo.Index, error) {
	sqlIndex := geo.NewSQLIndex(db)
	if rdb == nil {
		return sqlIndex, nil
	}

	points, err := sqlIndex.Points(ctx)
	if err != nil {
		return nil, err
	}
	redisIndex := geo.NewRedisIndex(rdb, geo.DefaultRedisKey)
	if err := redisIndex.Reindex(ctx, points); err != nil {
		logger.Warn("redis geo reindex failed, using sql index", "error", err)
		return sqlIndex, nil
	}
	logger.Info("redis geo index ready", "aquariums", len(points))
	return redisIndex, nil
}
