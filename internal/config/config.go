package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"decorprice/internal/util"
)

type Config struct {
	DBPath    string
	OutputDir string

	DecorAPIBaseURL       string
	DecorAPIToken         string
	DecorAPIRateLimitRPS  int
	DecorAPITimeoutMs     int
	DecorAPIMaxAttempts   int
	DecorEnrichConcurrent int

	OnlyAvailable bool

	SyncSchedule   string
	SyncOnStart    bool
	SyncAutoExport bool

	HTTPAddr string

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "catalog.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		DecorAPIBaseURL:       getEnv("DECOR_API_BASE_URL", "http://127.0.0.1:8000"),
		DecorAPIToken:         getEnv("DECOR_API_TOKEN", ""),
		DecorAPIRateLimitRPS:  getEnvInt("DECOR_API_RATE_LIMIT_RPS", 5),
		DecorAPITimeoutMs:     getEnvInt("DECOR_API_TIMEOUT_MS", 30000),
		DecorAPIMaxAttempts:   getEnvInt("DECOR_API_MAX_ATTEMPTS", 5),
		DecorEnrichConcurrent: getEnvInt("DECOR_ENRICH_CONCURRENCY", 4),

		OnlyAvailable: getEnvBool("ONLY_AVAILABLE", true),

		SyncSchedule:   getEnv("SYNC_SCHEDULE", "@every 30m"),
		SyncOnStart:    getEnvBool("SYNC_ON_START", true),
		SyncAutoExport: getEnvBool("SYNC_AUTO_EXPORT", false),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if cfg.DecorAPIMaxAttempts <= 0 {
		cfg.DecorAPIMaxAttempts = 1
	}
	if cfg.DecorEnrichConcurrent <= 0 {
		cfg.DecorEnrichConcurrent = 1
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if parsed, ok := util.ParseBool(value); ok {
		return parsed
	}
	return fallback
}
