package database

import (
	"fmt"
	"log/slog" // use slog for structured logging
	"os"
	"path/filepath"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const (
	connectRetries = 5
	retryInterval  = 2 * time.Second
)

// ConnectDB opens the database named by cfg.DatabaseURL and migrates the schema.
func ConnectDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: newGormLogger(logger)}

	var db *gorm.DB
	var err error
	if cfg.UsesPostgres() {
		db, err = openPostgres(cfg.DatabaseURL, gcfg, logger)
	} else {
		db, err = OpenSQLite(cfg.SQLitePath(), gcfg)
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to the database successfully", "postgres", cfg.UsesPostgres())
	return db, nil
}

func openPostgres(dsn string, gcfg *gorm.Config, logger *slog.Logger) (*gorm.DB, error) {
	var err error
	for i := 0; i < connectRetries; i++ {
		db, openErr := gorm.Open(postgres.Open(dsn), gcfg)
		err = openErr
		if err == nil {
			sqlDB, dbErr := db.DB()
			err = dbErr
			if err == nil {
				if err = sqlDB.Ping(); err == nil {
					return db, nil
				}
				// close the handle if ping fails to avoid resource leak
				sqlDB.Close()
			}
		}
		logger.Warn("database not ready, retrying", "attempt", i+1, "error", err)
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("failed to connect to database after %d retries: %w", connectRetries, err)
}

// OpenSQLite opens (and creates) a sqlite database file using the pure-Go driver.
func OpenSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	}, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Aquarium{},
		&models.Visit{},
		&models.WishlistItem{},
		&models.Attachment{},
	)
}

func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	return gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}
