package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("RECIPES_JWT_SECRET", "secret")

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:1323", cfg.HTTPListen())
		assert.Equal(t, "0.0.0.0:9000", cfg.GRPCListen())
		assert.Equal(t, DriverPostgres, cfg.DBDriver)
		assert.Equal(t, 21*24*time.Hour, cfg.TokenTTL)
		assert.Equal(t, 12, cfg.BcryptCost)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("RECIPES_JWT_SECRET", "secret")
		t.Setenv("RECIPES_PORT", "8080")
		t.Setenv("RECIPES_DB_DRIVER", DriverSQLite)
		t.Setenv("RECIPES_TOKEN_TTL", "1h")

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, DriverSQLite, cfg.DBDriver)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("RECIPES_JWT_SECRET", "")

		_, err := NewConfig()
		assert.Error(t, err)
	})

	t.Run("invalid ssl mode", func(t *testing.T) {
		t.Setenv("RECIPES_JWT_SECRET", "secret")
		t.Setenv("RECIPES_DB_SSL_MODE", "sometimes")

		_, err := NewConfig()
		assert.Error(t, err)
	})

	t.Run("bcrypt cost out of range", func(t *testing.T) {
		t.Setenv("RECIPES_JWT_SECRET", "secret")
		t.Setenv("RECIPES_BCRYPT_COST", "2")

		_, err := NewConfig()
		assert.Error(t, err)
	})
}
