// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cache backends selectable through CACHE_BACKEND
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendSQLite = "sqlite"
)

// DefaultAnalysisTTL is how long an analysis result stays cached
const DefaultAnalysisTTL = 300 * time.Second

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool
	Cache    *CacheConfig

	HealthCheckSchedule string // cron spec for the database health job
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	Backend         string
	AnalysisTTL     time.Duration // CACHE_TTL_ANALYSIS, in seconds
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisTimeout    time.Duration // dial, read and write timeout
	CleanupSchedule string        // cron spec for expired-entry cleanup
	BreakerTimeout  time.Duration // how long the circuit stays open after tripping
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("YIELDWISE_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Cache:    loadCacheConfig(),

		HealthCheckSchedule: getEnv("DB_HEALTH_SCHEDULE", "@hourly"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Cache == nil {
		return fmt.Errorf("cache configuration missing")
	}

	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendSQLite:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR required for redis cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Cache.AnalysisTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_ANALYSIS must be positive, got %s", c.Cache.AnalysisTTL)
	}

	return nil
}

func loadCacheConfig() *CacheConfig {
	return &CacheConfig{
		Backend:         strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendMemory)),
		AnalysisTTL:     time.Duration(getEnvAsInt("CACHE_TTL_ANALYSIS", int(DefaultAnalysisTTL/time.Second))) * time.Second,
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		RedisTimeout:    getEnvAsDuration("REDIS_TIMEOUT", 2*time.Second),
		CleanupSchedule: getEnv("CACHE_CLEANUP_SCHEDULE", "@every 10m"),
		BreakerTimeout:  getEnvAsDuration("CACHE_BREAKER_TIMEOUT", 30*time.Second),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
