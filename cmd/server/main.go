package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/ticketdash/internal/adapter/botapi"
	"github.com/pscheid92/ticketdash/internal/adapter/discord"
	"github.com/pscheid92/ticketdash/internal/adapter/filestore"
	"github.com/pscheid92/ticketdash/internal/adapter/httpserver"
	"github.com/pscheid92/ticketdash/internal/adapter/memory"
	"github.com/pscheid92/ticketdash/internal/adapter/metrics"
	"github.com/pscheid92/ticketdash/internal/adapter/redis"
	"github.com/pscheid92/ticketdash/internal/authz"
	"github.com/pscheid92/ticketdash/internal/domain"
	"github.com/pscheid92/ticketdash/internal/platform/config"
	"github.com/pscheid92/ticketdash/internal/platform/crypto"
	"github.com/pscheid92/ticketdash/internal/platform/logging"
	"github.com/pscheid92/ticketdash/internal/platform/version"
	"github.com/pscheid92/ticketdash/internal/session"
)

func runGracefulShutdown(srv *httpserver.Server, closers ...func() error) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				slog.Error("Failed to release resource", "error", err)
			}
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupCodec(cfg *config.Config) *session.Codec {
	if cfg.SessionEncryptionKey == "" {
		slog.Warn("SESSION_ENCRYPTION_KEY not set, session cookies are encoded but not sealed")
		return session.NewCodec(crypto.NoopSealer{})
	}

	sealer, err := crypto.NewAesGcmSealer(cfg.SessionEncryptionKey)
	if err != nil {
		slog.Error("Failed to create session sealer", "error", err)
		os.Exit(1)
	}
	return session.NewCodec(sealer)
}

type permissionStore interface {
	domain.PermissionStore
	Ping(ctx context.Context) error
	Close() error
}

// setupPermissions returns the override store plus an optional readiness check.
func setupPermissions(cfg *config.Config, storeMetrics *metrics.StoreMetrics) (domain.PermissionStore, []httpserver.HealthCheck, func() error) {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, permission overrides are kept in memory and lost on restart")
		return memory.NewPermissionStore(), nil, func() error { return nil }
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb, err := redis.NewClient(ctx, cfg.RedisURL, storeMetrics)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	var store permissionStore = redis.NewPermissionStore(rdb, redis.DefaultKey)
	checks := []httpserver.HealthCheck{{Name: "redis", Check: store.Ping}}
	return store, checks, store.Close
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "version", version.Get().String(), "env", cfg.AppEnv, "port", cfg.Port)

	registry := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	authMetrics := metrics.NewAuthMetrics(registry)
	storeMetrics := metrics.NewStoreMetrics(registry)

	oauth := discord.NewClient(discord.Options{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURI:  cfg.DiscordRedirectURI,
		Scopes:       cfg.Scopes(),
		APIURL:       cfg.DiscordAPIURL,
	})
	if !oauth.Configured() {
		slog.Warn("DISCORD_CLIENT_ID not set, login is disabled")
	}

	bot := botapi.NewClient(botapi.Options{
		BaseURL:              cfg.BotAPIURL,
		Secret:               cfg.APISecret,
		HTTPClient:           &http.Client{Timeout: cfg.BotTimeout},
		OnBreakerStateChange: authMetrics.BreakerStateFunc("bot_api"),
	})

	owner := authz.NewOwnerSource(cfg.DashboardOwnerID)
	resolver := authz.NewResolver(owner, []domain.AuthoritySource{
		bot,
		filestore.NewConfigOwnerSource(cfg.ConfigPath),
		filestore.NewPermissionsFileSource(cfg.PermissionsPath),
	}, authMetrics)
	if !owner.Configured() {
		slog.Warn("DASHBOARD_OWNER_ID not set, every signed-in user is granted dashboard access")
	}
	slog.Info("Authorization chain configured", "sources", resolver.Sources())

	permissions, healthChecks, closePermissions := setupPermissions(cfg, storeMetrics)

	srv, err := httpserver.NewServer(httpserver.Deps{
		Config:         cfg,
		OAuth:          oauth,
		Codec:          setupCodec(cfg),
		Authorizer:     resolver,
		Permissions:    permissions,
		Clock:          clock,
		HealthChecks:   healthChecks,
		Metrics:        httpMetrics.Middleware(),
		MetricsHandler: metrics.Handler(registry),
		Logins:         authMetrics,
	})
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, closePermissions)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
