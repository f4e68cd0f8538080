package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "tradebooks", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "tradebooks", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, "100-M", cfg.HTTP.RateLimit)
		assert.True(t, cfg.Ledger.DefaultCreditCeiling.IsZero())
		assert.Equal(t, "PK", cfg.Ledger.DefaultPhoneRegion)
		assert.Equal(t, 30*time.Second, cfg.Ledger.LockTTL)
		assert.Equal(t, 1000, cfg.Ledger.ImportMaxRows)
		assert.Equal(t, "reports/aging", cfg.Storage.ArchivePrefix)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("loads values from environment variables with TB prefix", func(t *testing.T) {
		t.Setenv("TB_APP_NAME", "test-app")
		t.Setenv("TB_APP_PORT", "9000")
		t.Setenv("TB_DATABASE_HOST", "testdb.local")
		t.Setenv("TB_DATABASE_PORT", "5433")
		t.Setenv("TB_REDIS_ENABLED", "true")
		t.Setenv("TB_LEDGER_DEFAULT_CREDIT_CEILING", "5_000_000")
		t.Setenv("TB_LEDGER_DEFAULT_PHONE_REGION", "MM")
		t.Setenv("TB_LEDGER_LOCK_TTL", "5s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.True(t, cfg.Redis.Enabled)
		assert.True(t, cfg.Ledger.DefaultCreditCeiling.Equal(decimal.NewFromInt(5000000)))
		assert.Equal(t, "MM", cfg.Ledger.DefaultPhoneRegion)
		assert.Equal(t, 5*time.Second, cfg.Ledger.LockTTL)
	})

	t.Run("rejects an unparsable credit ceiling", func(t *testing.T) {
		t.Setenv("TB_LEDGER_DEFAULT_CREDIT_CEILING", "fifty lakh")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_credit_ceiling")
	})

	t.Run("rejects a negative credit ceiling", func(t *testing.T) {
		t.Setenv("TB_LEDGER_DEFAULT_CREDIT_CEILING", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("TB_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("TB_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("requires bucket and keys when storage is enabled", func(t *testing.T) {
		t.Setenv("TB_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("production requires a database password", func(t *testing.T) {
		t.Setenv("TB_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("rejects sampling ratio outside range", func(t *testing.T) {
		t.Setenv("TB_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "books",
		Password: "p@ss/word",
		DBName:   "tradebooks",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://books:p%40ss%2Fword@db:5432/tradebooks?sslmode=disable", d.DSN())
}
