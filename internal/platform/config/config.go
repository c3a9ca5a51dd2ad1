package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"3000"`

	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURI  string `env:"DISCORD_REDIRECT_URI" default:"http://localhost:3000/api/auth/callback"`
	DiscordAPIURL       string `env:"DISCORD_API_URL" default:"https://discord.com/api"`
	DiscordScopes       string `env:"DISCORD_SCOPES" default:"identify"`

	// Empty means every authenticated user may use the dashboard.
	DashboardOwnerID string `env:"DASHBOARD_OWNER_ID"`

	BotAPIURL  string        `env:"BOT_API_URL" default:"http://localhost:3001"`
	APISecret  string        `env:"API_SECRET"`
	BotTimeout time.Duration `env:"BOT_API_TIMEOUT" default:"5s"`

	ConfigPath      string `env:"CONFIG_PATH" default:"../config.json"`
	PermissionsPath string `env:"PERMISSIONS_PATH" default:"../data/permissions.json"`

	SessionEncryptionKey string        `env:"SESSION_ENCRYPTION_KEY"`
	SessionMaxAge        time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days
	StateSecret          string        `env:"STATE_SECRET"`

	RedisURL string `env:"REDIS_URL"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Scopes splits DISCORD_SCOPES on spaces, commas or plus signs.
func (c *Config) Scopes() []string {
	return strings.FieldsFunc(c.DiscordScopes, func(r rune) bool {
		return r == ' ' || r == ',' || r == '+'
	})
}

func validate(cfg *Config) error {
	if cfg.SessionEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(cfg.SessionEncryptionKey)
		if err != nil {
			return fmt.Errorf("SESSION_ENCRYPTION_KEY must be valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("SESSION_ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
		}
	}

	if cfg.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", cfg.SessionMaxAge)
	}

	if cfg.StateSecret != "" && len(cfg.StateSecret) < 32 {
		return fmt.Errorf("STATE_SECRET must be at least 32 characters")
	}

	return nil
}
