package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Load default config when no config file is present", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
		assert.Equal(t, 24*time.Hour, cfg.Server.Auth.TokenTTL)

		assert.Equal(t, "info", cfg.Logger.Level)
		assert.Equal(t, "json", cfg.Logger.Encoding)
		assert.Equal(t, 1000, cfg.Logger.RingSize)

		assert.Equal(t, "/metrics", cfg.Metrics.Path)

		assert.Equal(t, 2, cfg.Portfolio.DefaultLoanLimit)
		assert.Equal(t, 1, cfg.Portfolio.MinLoanLimit)
		assert.Equal(t, 5, cfg.Portfolio.MaxLoanLimit)

		assert.Equal(t, "0 2 * * *", cfg.Batch.OverdueScanSchedule)
		assert.Equal(t, 30*time.Minute, cfg.Batch.OverdueScanTimeout)

		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
		assert.False(t, cfg.RabbitMQ.Enabled)
	})
}
