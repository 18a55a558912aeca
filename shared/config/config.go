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
	Port           string
	BackendURL     string
	BackendTimeout time.Duration
	MerchantToken  string
	JWTSecret      string
	RedisAddr      string
	RedisPassword  string
	DatabaseURL    string
	JournalDriver  string
	JournalPath    string
	MaxPinAttempts int
	PageSize       int
	ReceiptTTL     time.Duration
	SessionIdleTTL time.Duration
	LogLevel       string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8090"),
		BackendURL:    strings.TrimSuffix(getEnv("BACKEND_URL", "http://localhost:8080/api"), "/"),
		MerchantToken: os.Getenv("MERCHANT_TOKEN"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JournalDriver: getEnv("JOURNAL_DRIVER", "sqlite"),
		JournalPath:   getEnv("JOURNAL_PATH", "pos-journal.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.BackendTimeout, err = getDuration("BACKEND_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReceiptTTL, err = getDuration("RECEIPT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = getDuration("SESSION_IDLE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MaxPinAttempts, err = getInt("MAX_PIN_ATTEMPTS", 7); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = getInt("HISTORY_PAGE_SIZE", 20); err != nil {
		return nil, err
	}

	if cfg.MerchantToken == "" {
		return nil, fmt.Errorf("MERCHANT_TOKEN is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	switch cfg.JournalDriver {
	case "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres journal")
		}
	default:
		return nil, fmt.Errorf("unknown JOURNAL_DRIVER %q", cfg.JournalDriver)
	}
	if cfg.MaxPinAttempts < 1 {
		return nil, fmt.Errorf("MAX_PIN_ATTEMPTS must be at least 1")
	}
	if cfg.SessionIdleTTL <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TTL must be positive")
	}
	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("HISTORY_PAGE_SIZE must be at least 1")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
