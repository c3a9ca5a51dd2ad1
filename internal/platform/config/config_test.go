package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://localhost:3000/api/auth/callback", cfg.DiscordRedirectURI)
	assert.Equal(t, "https://discord.com/api", cfg.DiscordAPIURL)
	assert.Equal(t, "http://localhost:3001", cfg.BotAPIURL)
	assert.Equal(t, "../config.json", cfg.ConfigPath)
	assert.Equal(t, "../data/permissions.json", cfg.PermissionsPath)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 5*time.Second, cfg.BotTimeout)
	assert.Empty(t, cfg.DashboardOwnerID)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingClientIDIsNotFatal(t *testing.T) {
	t.Setenv("DISCORD_CLIENT_ID", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DiscordClientID)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("DISCORD_CLIENT_ID", "client-123")
	t.Setenv("DASHBOARD_OWNER_ID", "999")
	t.Setenv("API_SECRET", "shh")
	t.Setenv("SESSION_MAX_AGE", "24h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "client-123", cfg.DiscordClientID)
	assert.Equal(t, "999", cfg.DashboardOwnerID)
	assert.Equal(t, "shh", cfg.APISecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge)
}

func TestLoad_SessionEncryptionKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr string
	}{
		{"valid", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", ""},
		{"not hex", "xyz", "SESSION_ENCRYPTION_KEY must be valid hex"},
		{"wrong length", "0123456789abcdef", "got 8 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_ENCRYPTION_KEY", tt.key)

			_, err := Load()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ShortStateSecret(t *testing.T) {
	t.Setenv("STATE_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATE_SECRET")
}

func TestLoad_NonPositiveSessionMaxAge(t *testing.T) {
	t.Setenv("SESSION_MAX_AGE", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_MAX_AGE")
}

func TestScopes(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"identify", []string{"identify"}},
		{"identify guilds", []string{"identify", "guilds"}},
		{"identify+guilds", []string{"identify", "guilds"}},
		{"identify, guilds", []string{"identify", "guilds"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cfg := &Config{DiscordScopes: tt.raw}
			got := cfg.Scopes()
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
