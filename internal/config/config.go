package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service Ports
	HTTPPort int `env:"HTTP_PORT" default:"8080"`

	// Database (postgres DSN or sqlite://path)
	DatabaseURL string `env:"DATABASE_URL" default:"sqlite://data/aquarium.db"`

	// Session
	JWTSecret         string        `env:"JWT_SECRET" required:"true"`
	SessionTTL        time.Duration `env:"SESSION_TTL" default:"336h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" default:"_aquarium_session"`
	SecureCookie      bool          `env:"SECURE_COOKIE" default:"false"`

	// Redis (empty disables the geo index and og:image cache)
	RedisURL string `env:"REDIS_URL"`
	CacheTTL int    `env:"CACHE_TTL" default:"3600"`

	// Open Graph fetcher
	OGFetchTimeout time.Duration `env:"OG_FETCH_TIMEOUT" default:"5s"`
	OGFetchRate    int           `env:"OG_FETCH_RATE" default:"2"`

	// Development
	LogLevel    string   `env:"LOG_LEVEL" default:"debug"`
	LogFormat   string   `env:"LOG_FORMAT" default:"text"`
	CORSOrigins []string `env:"CORS_ORIGINS" default:"http://localhost:3000"`

	// File Storage
	StoragePath   string `env:"STORAGE_PATH" default:"data/uploads"`
	PublicURL     string `env:"PUBLIC_URL" default:"http://localhost:8080"`
	UploadMaxSize int64  `env:"UPLOAD_MAX_SIZE" default:"20971520"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		// system env vars still apply
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	config := &Config{}

	loadEnvString(&config.GoEnv, "GO_ENV", "development")

	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}

	loadEnvString(&config.DatabaseURL, "DATABASE_URL", "sqlite://data/aquarium.db")

	// Session
	if err := loadEnvStringRequired(&config.JWTSecret, "JWT_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.SessionTTL, "SESSION_TTL", 14*24*time.Hour); err != nil {
		return nil, err
	}
	loadEnvString(&config.SessionCookieName, "SESSION_COOKIE_NAME", "_aquarium_session")
	if err := loadEnvBool(&config.SecureCookie, "SECURE_COOKIE", false); err != nil {
		return nil, err
	}

	// Redis
	loadEnvString(&config.RedisURL, "REDIS_URL", "")
	if err := loadEnvInt(&config.CacheTTL, "CACHE_TTL", 3600); err != nil {
		return nil, err
	}

	// Open Graph fetcher
	if err := loadEnvDuration(&config.OGFetchTimeout, "OG_FETCH_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.OGFetchRate, "OG_FETCH_RATE", 2); err != nil {
		return nil, err
	}

	// Development
	loadEnvString(&config.LogLevel, "LOG_LEVEL", "debug")
	loadEnvString(&config.LogFormat, "LOG_FORMAT", "text")
	loadEnvStringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"http://localhost:3000"})

	// File Storage
	loadEnvString(&config.StoragePath, "STORAGE_PATH", "data/uploads")
	loadEnvString(&config.PublicURL, "PUBLIC_URL", fmt.Sprintf("http://localhost:%d", config.HTTPPort))
	if err := loadEnvInt64(&config.UploadMaxSize, "UPLOAD_MAX_SIZE", 20<<20); err != nil {
		return nil, err
	}

	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvInt64(target *int64, key string, defaultValue int64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) {
	if value := os.Getenv(key); value != "" {
		*target = strings.Split(value, ",")
		for i, v := range *target {
			(*target)[i] = strings.TrimSpace(v)
		}
	} else {
		*target = defaultValue
	}
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	// HS256 key
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}

	if c.SessionTTL <= 0 {
		errors = append(errors, "SESSION_TTL must be positive")
	}
	if c.OGFetchTimeout <= 0 {
		errors = append(errors, "OG_FETCH_TIMEOUT must be positive")
	}
	if c.OGFetchRate < 1 {
		errors = append(errors, "OG_FETCH_RATE must be at least 1")
	}
	if c.UploadMaxSize < 1 {
		errors = append(errors, "UPLOAD_MAX_SIZE must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// CacheDuration is CACHE_TTL as a duration.
func (c *Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// UsesPostgres reports whether DATABASE_URL points at a postgres server.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// SQLitePath strips the sqlite:// scheme from DATABASE_URL.
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite://")
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
