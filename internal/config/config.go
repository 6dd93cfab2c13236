package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"streaksage/internal/logger"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	AppPort    string
	AppVersion string
	LogLevel   string
	LogJSON    bool
	LogFile    string

	// Storage
	StorageBackend string
	DatabaseURL    string
	SQLitePath     string
	SeedData       bool

	// Wall clock used for "today"
	Location *time.Location

	// Rate limiting (Redis, fail-open when RedisAddr is empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	APIRateLimit  int
	APIRateWindow time.Duration
	AllowedOrigin string
}

// Load reads the configuration from the environment (and .env if present).
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from getenv. Malformed numbers fall back to defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		AppPort:        get("APP_PORT", "8080"),
		AppVersion:     get("APP_VERSION", "dev"),
		LogLevel:       strings.ToLower(get("LOG_LEVEL", "info")),
		LogJSON:        get("LOG_JSON", "false") == "true",
		LogFile:        getenv("LOG_FILE"),
		StorageBackend: strings.ToLower(get("STORAGE_BACKEND", BackendMemory)),
		DatabaseURL:    getenv("DATABASE_URL"),
		SQLitePath:     get("SQLITE_PATH", "data/streaksage.db"),
		SeedData:       get("SEED_DATA", "true") != "false",
		RedisAddr:      getenv("REDIS_ADDR"),
		RedisPassword:  getenv("REDIS_PASSWORD"),
		RedisDB:        positiveInt(getenv("REDIS_DB"), 0),
		APIRateLimit:   positiveInt(getenv("API_RATE_LIMIT"), 120),
		APIRateWindow:  time.Duration(positiveInt(getenv("API_RATE_WINDOW_SECONDS"), 60)) * time.Second,
		AllowedOrigin:  getenv("ALLOWED_ORIGIN"),
	}

	switch cfg.StorageBackend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want memory, postgres or sqlite)", cfg.StorageBackend)
	}

	loc, err := time.LoadLocation(get("APP_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

func positiveInt(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
