package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the runtime settings for the extraction service.
type Config struct {
	Host           string
	Port           string
	AllowedOrigins []string

	// WebhookURL receives productUpdated pushes. Empty means log-only.
	WebhookURL string

	// DatabaseURL enables the watched-page registry when set.
	DatabaseURL string

	// BrowserBin overrides the browser binary used for live sessions.
	BrowserBin string

	// Debounce is the quiet window after a burst of page mutations
	// before a re-extraction pass runs.
	Debounce time.Duration

	// EventPoll is how often queued page events are drained.
	EventPoll time.Duration

	// WatchSpec is the cron spec for the watched-page sweep.
	WatchSpec string

	// RateLimitRPS caps per-client request rates.
	RateLimitRPS float64
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: []string{getEnv("ALLOWED_ORIGINS", "*")},
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		BrowserBin:     getEnv("BROWSER_BIN", ""),
		Debounce:       getEnvMillis("DEBOUNCE_MS", 300*time.Millisecond),
		EventPoll:      getEnvMillis("EVENT_POLL_MS", 250*time.Millisecond),
		WatchSpec:      getEnv("WATCH_CRON", "0 0 */12 * * *"),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}
