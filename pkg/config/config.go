package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External services
	MarketData MarketDataConfig
	Storage    StorageConfig

	// Batch processing
	Batch BatchConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration. Redis is optional; when disabled
// the quote cache degrades to direct provider lookups.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// MarketDataConfig holds market data provider configuration.
type MarketDataConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec float64
	QuoteCacheTTL  time.Duration
	LookbackRange  string // bounded lookback used to confirm symbol existence
}

// StorageConfig holds artifact store configuration.
type StorageConfig struct {
	BaseURL string
	Bucket  string
	APIKey  string
	Timeout time.Duration
}

// BatchConfig holds batch run defaults.
type BatchConfig struct {
	Workers      int
	Period       string // history period for the valuation series (6mo, 1y, ...)
	SkipEmpty    bool
	RiskFreeRate float64
	OutputDir    string
}

// SchedulerConfig holds market-hours scheduler configuration.
type SchedulerConfig struct {
	TickMinutes int
	Timezone    string
	OpenHour    int
	OpenMinute  int
	CloseHour   int
	CloseMinute int
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External services
		MarketData: MarketDataConfig{
			BaseURL:        getEnv("MARKET_DATA_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout:        getEnvAsDuration("MARKET_DATA_TIMEOUT", "15s"),
			RequestsPerSec: getEnvAsFloat("MARKET_DATA_RPS", 5.0),
			QuoteCacheTTL:  getEnvAsDuration("MARKET_DATA_QUOTE_TTL", "1m"),
			LookbackRange:  getEnv("MARKET_DATA_LOOKBACK", "5d"),
		},

		Storage: StorageConfig{
			BaseURL: getEnv("STORAGE_BASE_URL", ""),
			Bucket:  getEnv("STORAGE_BUCKET", "portfolio-reports"),
			APIKey:  getEnv("STORAGE_API_KEY", ""),
			Timeout: getEnvAsDuration("STORAGE_TIMEOUT", "30s"),
		},

		// Batch processing
		Batch: BatchConfig{
			Workers:      getEnvAsInt("BATCH_WORKERS", 4),
			Period:       getEnv("BATCH_PERIOD", "6mo"),
			SkipEmpty:    getEnvAsBool("BATCH_SKIP_EMPTY", true),
			RiskFreeRate: getEnvAsFloat("BATCH_RISK_FREE_RATE", 0.0),
			OutputDir:    getEnv("BATCH_OUTPUT_DIR", "output"),
		},

		// Scheduler
		Scheduler: SchedulerConfig{
			TickMinutes: getEnvAsInt("SCHEDULER_TICK_MINUTES", 15),
			Timezone:    getEnv("MARKET_TIMEZONE", "America/New_York"),
			OpenHour:    getEnvAsInt("MARKET_OPEN_HOUR", 9),
			OpenMinute:  getEnvAsInt("MARKET_OPEN_MINUTE", 30),
			CloseHour:   getEnvAsInt("MARKET_CLOSE_HOUR", 16),
			CloseMinute: getEnvAsInt("MARKET_CLOSE_MINUTE", 0),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Location resolves the configured market timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Scheduler.Timezone)
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1")
	}

	if c.Scheduler.TickMinutes < 1 {
		return fmt.Errorf("SCHEDULER_TICK_MINUTES must be at least 1")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("MARKET_TIMEZONE is invalid: %w", err)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
