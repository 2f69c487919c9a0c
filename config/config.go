package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Feed     FeedConfig
	Scoring  ScoringConfig
	Seeder   SeederConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
	CORSOrigins             []string
	RateLimitRPM            int
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	URL string
}

// FeedConfig controls the incident ingestion pipeline
type FeedConfig struct {
	URL          string
	SourceLabel  string
	PollInterval time.Duration
	IncidentTTL  time.Duration
	RateLimit    float64
	WorkerCount  int
	RetryAttempts int
	RetryDelay   time.Duration
}

// ScoringConfig holds the safety-scoring thresholds and radii.
// Every field has a documented default; absent configuration is never fatal.
type ScoringConfig struct {
	SafeThreshold    float64
	CautionThreshold float64
	IncidentRadiusKm float64
	ReportRadiusKm   float64
	ReportWindowDays int
	RiskCacheTTL     time.Duration
}

// SeederConfig configures the country-risk dataset seeder
type SeederConfig struct {
	IndicatorURL    string
	HomicideCeiling float64
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
			CORSOrigins:             getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RateLimitRPM:            getEnvInt("RATE_LIMIT_RPM", 120),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Feed: FeedConfig{
			URL:           getEnv("FEED_URL", ""),
			SourceLabel:   getEnv("FEED_SOURCE_LABEL", "NSW RFS"),
			PollInterval:  getEnvDuration("FEED_POLL_INTERVAL", 15*time.Minute),
			IncidentTTL:   getEnvDuration("FEED_INCIDENT_TTL", 36*time.Hour),
			RateLimit:     getEnvFloat("FEED_RATE_LIMIT", 5.0),
			WorkerCount:   getEnvInt("FEED_WORKER_COUNT", 4),
			RetryAttempts: getEnvInt("FEED_RETRY_ATTEMPTS", 3),
			RetryDelay:    getEnvDuration("FEED_RETRY_DELAY", 5*time.Second),
		},
		Scoring: ScoringConfig{
			SafeThreshold:    getEnvFloat("SAFE_THRESHOLD", 7.5),
			CautionThreshold: getEnvFloat("CAUTION_THRESHOLD", 4.0),
			IncidentRadiusKm: getEnvFloat("INCIDENT_RADIUS_KM", 20),
			ReportRadiusKm:   getEnvFloat("REPORT_RADIUS_KM", 2),
			ReportWindowDays: getEnvInt("REPORT_WINDOW_DAYS", 30),
			RiskCacheTTL:     getEnvDuration("RISK_CACHE_TTL", 15*time.Minute),
		},
		Seeder: SeederConfig{
			IndicatorURL:    getEnv("RISK_INDICATOR_URL", "https://api.worldbank.org/v2/country/all/indicator/VC.IHR.PSRC.P5?format=json&per_page=30000"),
			HomicideCeiling: getEnvFloat("RISK_HOMICIDE_CEILING", 50),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.Feed.WorkerCount < 1 {
		return fmt.Errorf("feed worker count must be at least 1")
	}
	if c.Scoring.SafeThreshold < c.Scoring.CautionThreshold {
		return fmt.Errorf("SAFE_THRESHOLD (%.1f) must be >= CAUTION_THRESHOLD (%.1f)",
			c.Scoring.SafeThreshold, c.Scoring.CautionThreshold)
	}
	if c.Seeder.HomicideCeiling <= 0 {
		return fmt.Errorf("homicide ceiling must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
