package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	GRPCPort              int
	GRPCReflectionEnabled bool
	GRPCLoggingEnabled    bool
	HTTPPort              int

	PerformanceAPIURL string
	ReviewsAPIURL     string
	RankAPIURL        string
	// InsightsAPIURL is optional; insights are skipped when empty.
	InsightsAPIURL  string
	UpstreamAPIKey  string
	UpstreamTimeout time.Duration

	RefreshInterval       time.Duration
	StalenessThreshold    time.Duration
	AutoRefreshEnabled    bool
	PerformanceWindowDays int
	RunQueueSize          int
	RunHistoryCacheTTL    time.Duration
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/database.db"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		GRPCPort:              getEnvInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getEnvBool("GRPC_REFLECTION_ENABLED", false),
		GRPCLoggingEnabled:    getEnvBool("GRPC_LOGGING_ENABLED", true),
		HTTPPort:              getEnvInt("HTTP_PORT", 9090),

		PerformanceAPIURL: getEnv("PERFORMANCE_API_URL", "http://localhost:8081"),
		ReviewsAPIURL:     getEnv("REVIEWS_API_URL", "http://localhost:8081"),
		RankAPIURL:        getEnv("RANK_API_URL", ""),
		InsightsAPIURL:    getEnv("INSIGHTS_API_URL", ""),
		UpstreamAPIKey:    getEnv("UPSTREAM_API_KEY", ""),
		UpstreamTimeout:   getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),

		RefreshInterval:       getEnvDuration("REFRESH_INTERVAL", 5*time.Minute),
		StalenessThreshold:    getEnvDuration("STALENESS_THRESHOLD", 2*time.Minute),
		AutoRefreshEnabled:    getEnvBool("AUTO_REFRESH_ENABLED", true),
		PerformanceWindowDays: getEnvInt("PERFORMANCE_WINDOW_DAYS", 30),
		RunQueueSize:          getEnvInt("RUN_QUEUE_SIZE", 64),
		RunHistoryCacheTTL:    getEnvDuration("RUN_HISTORY_CACHE_TTL", 10*time.Minute),
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// getEnvDuration accepts Go duration strings ("90s", "5m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
