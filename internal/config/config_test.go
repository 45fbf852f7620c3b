package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	_, err := loadInto(v, t.TempDir())
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, StrategyLocal, cfg.Storage.Strategy)
	assert.Equal(t, DriverSQLite, cfg.Storage.Local.Driver)
	assert.Equal(t, "main-dev", cfg.Storage.OwnerID)
	assert.Equal(t, "portfolio.changes", cfg.Kafka.Topic)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenLifespan)
	assert.Equal(t, "none", cfg.AI.Provider)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("STORAGE_STRATEGY", StrategyRemote)
	t.Setenv("OWNER_EMAIL", "owner@example.com")
	t.Setenv("TOKEN_LIFESPAN", "2h")

	v := viper.New()
	_, err := loadInto(v, t.TempDir())
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, StrategyRemote, cfg.Storage.Strategy)
	assert.Equal(t, "owner@example.com", cfg.Auth.OwnerEmail)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenLifespan)
}
