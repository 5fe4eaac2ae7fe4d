package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the screening service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	AccountsFile string
	DatabaseURL  string
	HistoryLimit int

	GeminiAPIKey  string
	GeminiModel   string
	GeminiHTTPURL string
	AdapterMode   string

	StreamDelay time.Duration

	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:         envOrDefault("APP_METRICS_NAMESPACE", "hiringscout"),
		AllowAnyOrigin:           false,
		AccountsFile:             envOrDefault("ACCOUNTS_FILE", "data.json"),
		DatabaseURL:              trimmedEnv("DATABASE_URL"),
		HistoryLimit:             100,
		GeminiAPIKey:             trimmedEnv("GEMINI_API_KEY"),
		GeminiModel:              envOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiHTTPURL:            trimmedEnv("GEMINI_HTTP_URL"),
		AdapterMode:              envOrDefault("GENAI_ADAPTER_MODE", "auto"),
		StreamDelay:              15 * time.Millisecond,
		JWTSecret:                trimmedEnv("APP_JWT_SECRET"),
		TokenTTL:                 24 * time.Hour,
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 30 * time.Minute,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.StreamDelay, err = durationFromEnv("APP_STREAM_DELAY", cfg.StreamDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.TokenTTL, err = durationFromEnv("APP_TOKEN_TTL", cfg.TokenTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryLimit, err = intFromEnv("APP_HISTORY_LIMIT", cfg.HistoryLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.HistoryLimit <= 0 {
		return Config{}, fmt.Errorf("APP_HISTORY_LIMIT must be positive")
	}
	if cfg.StreamDelay < 0 {
		return Config{}, fmt.Errorf("APP_STREAM_DELAY must not be negative")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("APP_TOKEN_TTL must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.AdapterMode)) {
	case "auto", "http", "mock":
	default:
		return Config{}, fmt.Errorf("invalid GENAI_ADAPTER_MODE: %q (expected auto|http|mock)", cfg.AdapterMode)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
