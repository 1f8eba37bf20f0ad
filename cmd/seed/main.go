package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maho-na510/aquarium-visit-log/database"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"
	"github.com/maho-na510/aquarium-visit-log/internal/config"
	"github.com/maho-na510/aquarium-visit-log/internal/ogimage"

	"github.com/redis/go-redis/v9"
)

const warmWorkers = 4

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	result, err := database.Seed(ctx, db)
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seed finished",
		"aquariums_created", result.AquariumsCreated,
		"user_created", result.UserCreated,
		"user", database.SeedUserEmail,
	)

	if cfg.RedisURL == "" {
		return
	}

	// fill the og:image cache so the first page views do not wait on external sites
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("skipping og:image warm-up", "error", err)
		return
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	pages, err := repository.NewAquariumRepository(db).Websites(ctx)
	if err != nil {
		logger.Warn("skipping og:image warm-up", "error", err)
		return
	}
	fetcher := ogimage.New(ogimage.Options{
		Timeout:       cfg.OGFetchTimeout,
		RatePerSecond: cfg.OGFetchRate,
		Cache:         ogimage.NewRedisCache(rdb, cfg.CacheDuration()),
		Logger:        logger,
	})
	fetcher.Warm(ctx, pages, warmWorkers)
}
