package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Notification drivers understood by NotifyConfig.
const (
	NotifyDriverNone    = "none"
	NotifyDriverRedis   = "redis"
	NotifyDriverWebhook = "webhook"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// NotifyConfig selects how freshly stored notifications are pushed to clients.
type NotifyConfig struct {
	Driver        string
	RedisURL      string
	ChannelPrefix string
	WebhookURL    string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	JWTSecret      string
	Port           string
	TokenTTL       time.Duration
	RateLimitWrite RateLimitConfig
	RateLimitLogin RateLimitConfig
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	Notify         NotifyConfig
	PhoneRegion    string
	SeedOnStart    bool
	SeedPassword   string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		Port:           getEnv("PORT", "8080"),
		TokenTTL:       parseDuration(getEnv("JWT_TTL", "24h")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		Notify: NotifyConfig{
			Driver:        strings.ToLower(getEnv("NOTIFY_DRIVER", NotifyDriverNone)),
			RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
			ChannelPrefix: getEnv("NOTIFY_CHANNEL_PREFIX", "notifications.user."),
			WebhookURL:    os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		PhoneRegion:  strings.ToUpper(getEnv("PHONE_REGION", "US")),
		SeedOnStart:  parseBool(getEnv("SEED_ON_START", "false")),
		SeedPassword: getEnv("SEED_ADMIN_PASSWORD", "11223344"),
		DBMaxConns:   parseInt32(getEnv("DB_MAX_CONNS", "0")),
		DBMinConns:   parseInt32(getEnv("DB_MIN_CONNS", "0")),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_WRITE", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WRITE value: %w", err)
	}
	cfg.RateLimitWrite = rl

	rl, err = parseRateLimit(getEnv("RATE_LIMIT_LOGIN", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LOGIN value: %w", err)
	}
	cfg.RateLimitLogin = rl

	switch cfg.Notify.Driver {
	case NotifyDriverNone, NotifyDriverRedis:
	case NotifyDriverWebhook:
		if cfg.Notify.WebhookURL == "" {
			return nil, fmt.Errorf("NOTIFY_WEBHOOK_URL is required when NOTIFY_DRIVER=webhook")
		}
	default:
		return nil, fmt.Errorf("unsupported NOTIFY_DRIVER %q", cfg.Notify.Driver)
	}

	return cfg, nil
}

func parseInt32(value string) int32 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil || n < 0 {
		return 0
	}
	return int32(n)
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func parseBool(input string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(input))
	return err == nil && b
}

func splitList(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
