package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmoraes/aportebtc-backend/internal/logger"
)

// AppConfig carries every runtime knob of the server binary.
type AppConfig struct {
	Port               string
	DatabaseURL        string
	APIToken           string
	LogLevel           string
	MaxUploadSizeBytes int64
	RateCacheTTL       time.Duration
	RateAPIBaseURL     string
}

// Cfg is the loaded application configuration.
var Cfg *AppConfig

// Load reads configuration from a .env file (if present) and the OS
// environment, applying development defaults where unset.
func Load() {
	if err := godotenv.Load(); err != nil {
		logger.L.Info("no .env file found, using OS environment and defaults")
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        buildDatabaseURL(),
		APIToken:           getEnv("API_TOKEN", "dev-token"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeBytes: getEnvInt64("MAX_UPLOAD_SIZE_BYTES", 5<<20),
		RateCacheTTL:       getEnvDuration("RATE_CACHE_TTL", time.Minute),
		RateAPIBaseURL:     getEnv("RATE_API_BASE_URL", "https://api.coingecko.com"),
	}

	if Cfg.APIToken == "dev-token" {
		logger.L.Warn("using default API_TOKEN; set API_TOKEN for production")
	}
}

// buildDatabaseURL prefers an explicit DB_CONN_STR and otherwise builds a
// connection string from the individual vars (Docker friendly).
func buildDatabaseURL() string {
	if conn := os.Getenv("DB_CONN_STR"); conn != "" {
		return conn
	}
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "aportebtc")
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logger.L.Warn("invalid integer in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.L.Warn("invalid duration in environment, using fallback", "key", key, "value", v)
		return fallback
	}
	return d
}
