package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"APP_ENV", "GRPC_PORT", "GRPC_LOGGING_ENABLED", "REFRESH_INTERVAL", "AUTO_REFRESH_ENABLED", "INSIGHTS_API_URL"} {
			t.Setenv(key, "")
		}
		cfg := LoadFromEnv()

		assert.Equal(t, "development", cfg.AppEnv)
		assert.Equal(t, "sqlite3", cfg.DBDriver)
		assert.Equal(t, 50051, cfg.GRPCPort)
		assert.True(t, cfg.GRPCLoggingEnabled)
		assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
		assert.Equal(t, 2*time.Minute, cfg.StalenessThreshold)
		assert.True(t, cfg.AutoRefreshEnabled)
		assert.Equal(t, 30, cfg.PerformanceWindowDays)
		assert.Equal(t, 64, cfg.RunQueueSize)
		assert.Equal(t, 10*time.Minute, cfg.RunHistoryCacheTTL)
		assert.Empty(t, cfg.InsightsAPIURL)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("GRPC_PORT", "6000")
		t.Setenv("GRPC_REFLECTION_ENABLED", "true")
		t.Setenv("GRPC_LOGGING_ENABLED", "false")
		t.Setenv("REFRESH_INTERVAL", "90s")
		t.Setenv("AUTO_REFRESH_ENABLED", "false")
		t.Setenv("UPSTREAM_TIMEOUT", "3s")
		t.Setenv("INSIGHTS_API_URL", "http://insights")
		cfg := LoadFromEnv()

		assert.Equal(t, 6000, cfg.GRPCPort)
		assert.True(t, cfg.GRPCReflectionEnabled)
		assert.False(t, cfg.GRPCLoggingEnabled)
		assert.Equal(t, 90*time.Second, cfg.RefreshInterval)
		assert.False(t, cfg.AutoRefreshEnabled)
		assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
		assert.Equal(t, "http://insights", cfg.InsightsAPIURL)
	})

	t.Run("invalid values fall back", func(t *testing.T) {
		t.Setenv("GRPC_PORT", "abc")
		t.Setenv("AUTO_REFRESH_ENABLED", "maybe")
		t.Setenv("STALENESS_THRESHOLD", "-1m")
		t.Setenv("RUN_HISTORY_CACHE_TTL", "ten")
		cfg := LoadFromEnv()

		assert.Equal(t, 50051, cfg.GRPCPort)
		assert.True(t, cfg.AutoRefreshEnabled)
		assert.Equal(t, 2*time.Minute, cfg.StalenessThreshold)
		assert.Equal(t, 10*time.Minute, cfg.RunHistoryCacheTTL)
	})
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		t.Run(env, func(t *testing.T) {
			logger, err := NewLogger(&Config{AppEnv: env})
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}
