package config

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	// Membership API
	APIBaseURL     string
	APITimeout     time.Duration
	APISigningKey  *rsa.PrivateKey
	APITokenIssuer string

	// Console
	Location           *time.Location
	CORSAllowedOrigins []string
	ActionRateLimit    int

	// Record cache
	UseCache        bool
	RedisAddr       string
	RedisPassword   string
	CacheDefaultTTL time.Duration
	CacheKeyPrefix  string

	// Activity outbox, optional
	DatabaseURL string
}

// Load reads the console configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		APIBaseURL:     strings.TrimRight(getEnv("MEMBERSHIP_API_URL", ""), "/"),
		APITimeout:     getEnvDuration("MEMBERSHIP_API_TIMEOUT", 10*time.Second),
		APITokenIssuer: getEnv("API_TOKEN_ISSUER", "membership-console"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		ActionRateLimit:    getEnvInt("ACTION_RATE_LIMIT", 60),

		UseCache:        getEnvBool("USE_CACHE", false),
		RedisAddr:       getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASS", ""),
		CacheDefaultTTL: getEnvDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
		CacheKeyPrefix:  getEnv("CACHE_KEY_PREFIX", "console:"),

		DatabaseURL: getEnv("DB_CONNECTION_STRING", ""),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("MEMBERSHIP_API_URL is required")
	}

	loc, err := time.LoadLocation(getEnv("CONSOLE_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONSOLE_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if path := getEnv("API_SIGNING_KEY_PATH", ""); path != "" {
		key, err := loadPrivateKey(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load API signing key: %w", err)
		}
		cfg.APISigningKey = key
	}

	return cfg, nil
}

// HasActivityOutbox reports whether activity events should be stored.
func (c *Config) HasActivityOutbox() bool {
	return c.DatabaseURL != ""
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return privateKey, nil
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
