package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Session backends for the durable tier.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	// Finance backend
	APIHost    string
	APITimeout time.Duration

	// Web client
	Port           string
	LoginRateLimit int

	// Logging
	LogLevel  string
	LogFormat string

	// Sessions
	SessionBackend      string
	SQLiteDBPath        string
	RedisURL            string
	SessionEphemeralTTL time.Duration
	SessionDurableTTL   time.Duration
	SessionCacheSize    int

	// Terminal client
	Profile string

	// Development backend
	MockAPIPort     string
	MockAPISecret   string
	MockAPIUser     string
	MockAPIPassword string
}

func Load() *Config {
	return &Config{
		APIHost:    getEnv("API_HOST", "http://localhost:8080"),
		APITimeout: getEnvDuration("API_TIMEOUT", 0),

		Port:           getEnv("PORT", "8081"),
		LoginRateLimit: getEnvInt("LOGIN_RATE_LIMIT", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		SessionBackend:      getEnv("SESSION_BACKEND", BackendSQLite),
		SQLiteDBPath:        getEnv("SQLITE_DB_PATH", "./data/finclient.db"),
		RedisURL:            getEnv("REDIS_URL", ""),
		SessionEphemeralTTL: getEnvDuration("SESSION_EPHEMERAL_TTL", 12*time.Hour),
		SessionDurableTTL:   getEnvDuration("SESSION_DURABLE_TTL", 30*24*time.Hour),
		SessionCacheSize:    getEnvInt("SESSION_CACHE_SIZE", 1000),

		Profile: getEnv("FINCLIENT_PROFILE", "default"),

		MockAPIPort:     getEnv("MOCKAPI_PORT", "8080"),
		MockAPISecret:   getEnv("MOCKAPI_SECRET", "dev-secret"),
		MockAPIUser:     getEnv("MOCKAPI_USER", ""),
		MockAPIPassword: getEnv("MOCKAPI_PASSWORD", ""),
	}
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var errors []string

	if parsed, err := url.Parse(c.APIHost); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API host '%s': %v", c.APIHost, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API host '%s': scheme must be 'http' or 'https'", c.APIHost))
	}
	if c.APITimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must not be negative", c.APITimeout))
	}

	errors = append(errors, validatePort("port", c.Port)...)
	errors = append(errors, validatePort("mock API port", c.MockAPIPort)...)

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	switch c.SessionBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite session backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case BackendRedis:
		if c.RedisURL == "" {
			errors = append(errors, "REDIS_URL is required when using redis session backend")
		} else if parsed, err := url.Parse(c.RedisURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Redis URL '%s': %v", c.RedisURL, err))
		} else if parsed.Scheme != "redis" && parsed.Scheme != "rediss" {
			errors = append(errors, fmt.Sprintf("invalid Redis URL scheme '%s': must be 'redis' or 'rediss'", parsed.Scheme))
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid session backend '%s': must be one of [%s %s]", c.SessionBackend, BackendSQLite, BackendRedis))
	}

	if c.SessionEphemeralTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid ephemeral session TTL %v: must be at least 1 minute", c.SessionEphemeralTTL))
	}
	if c.SessionDurableTTL < c.SessionEphemeralTTL {
		errors = append(errors, fmt.Sprintf("invalid durable session TTL %v: must be at least the ephemeral TTL %v", c.SessionDurableTTL, c.SessionEphemeralTTL))
	}
	if c.SessionCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid session cache size %d: must be at least 1", c.SessionCacheSize))
	}
	if c.LoginRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid login rate limit %d: must be at least 1", c.LoginRateLimit))
	}
	if strings.TrimSpace(c.Profile) == "" {
		errors = append(errors, "profile name cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func validatePort(name, value string) []string {
	port, err := strconv.Atoi(value)
	if err != nil {
		return []string{fmt.Sprintf("invalid %s '%s': must be a number", name, value)}
	}
	if port < 1 || port > 65535 {
		return []string{fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, port)}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
