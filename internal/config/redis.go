package config

import (
	"fmt"
	"strconv"
	"time"
)

// RedisConfig holds configuration for the session store
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection string and takes
	// precedence over Addr, Password and DB.
	URL        string
	Addr       string
	Password   string
	DB         int
	TLS        bool
	SessionTTL time.Duration
}

// Enabled reports whether a Redis address was configured
func (c *RedisConfig) Enabled() bool {
	return c.Addr != "" || c.URL != ""
}

// LoadRedisConfig loads Redis configuration from environment variables.
// Empty REDIS_URL and REDIS_ADDR are valid and select the in-memory session store.
func LoadRedisConfig(getenv func(string) string) (*RedisConfig, error) {
	config := &RedisConfig{
		URL:        getenv("REDIS_URL"),
		Addr:       getenv("REDIS_ADDR"),
		Password:   getenv("REDIS_PASSWORD"),
		SessionTTL: 24 * time.Hour,
	}

	if raw := getenv("REDIS_TLS"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("REDIS_TLS must be a boolean, got %q", raw)
		}
		config.TLS = enabled
	}

	if raw := getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return nil, fmt.Errorf("REDIS_DB must be a non-negative integer, got %q", raw)
		}
		config.DB = db
	}

	if raw := getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("SESSION_TTL must be a positive duration, got %q", raw)
		}
		config.SessionTTL = ttl
	}

	return config, nil
}
