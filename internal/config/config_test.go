package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresPasetoKey(t *testing.T) {
	t.Setenv("PASETO_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PASETO_KEY")

	t.Setenv("PASETO_KEY", "too short")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PASETO_KEY", strings.Repeat("k", 32))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Contains(t, cfg.Database.ConnectionString(), "dbname=portfolio")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PASETO_KEY", strings.Repeat("k", 32))
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("TOKEN_DURATION", "7200")
	t.Setenv("TRUSTED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("DB_CHANNEL_BINDING", "require")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.TrustedOrigins)
	assert.Contains(t, cfg.Database.ConnectionString(), "channel_binding=require")
}

func TestDurationEnvFallsBackOnGarbage(t *testing.T) {
	t.Setenv("PASETO_KEY", strings.Repeat("k", 32))
	t.Setenv("TOKEN_DURATION", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Auth.TokenDuration)
}
