// Command import-permissions copies the entries of a permissions JSON file
// into the Redis override store used by /api/permissions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/pscheid92/ticketdash/internal/adapter/filestore"
	"github.com/pscheid92/ticketdash/internal/adapter/redis"
	"github.com/pscheid92/ticketdash/internal/domain"
	"github.com/pscheid92/ticketdash/internal/platform/logging"
)

func main() {
	var (
		redisURL  = flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL (or set REDIS_URL env)")
		path      = flag.String("file", envOr("PERMISSIONS_PATH", "../data/permissions.json"), "Permissions file to import")
		key       = flag.String("key", redis.DefaultKey, "Redis hash holding the overrides")
		overwrite = flag.Bool("overwrite", false, "Replace existing entries instead of merging into them")
		dryRun    = flag.Bool("dry-run", false, "Dry run mode (don't write to Redis)")
		verbose   = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *redisURL == "" {
		log.Fatal("Redis URL required (--redis or REDIS_URL env)")
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	logging.InitLogger(level, "text")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rdb, err := redis.NewClient(ctx, *redisURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	store := redis.NewPermissionStore(rdb, *key)
	defer store.Close()
	slog.Info("Connected to Redis", "url", sanitizeURL(*redisURL), "key", *key)

	if err := importFile(ctx, store, *path, *overwrite, *dryRun); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	slog.Info("Import complete")
}

func importFile(ctx context.Context, store domain.PermissionStore, path string, overwrite, dryRun bool) error {
	start := time.Now()

	entries, skipped, err := filestore.ReadPermissionsFile(path)
	if err != nil {
		return err
	}
	for _, userID := range skipped {
		slog.Warn("Skipping entry that is not an object", "user_id", userID)
	}

	slog.Info("Starting import", "file", path, "entries", len(entries), "dry_run", dryRun, "overwrite", overwrite)

	userIDs := make([]string, 0, len(entries))
	for userID := range entries {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	var created, merged int
	for _, userID := range userIDs {
		perms := entries[userID]

		current, exists, err := store.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", userID, err)
		}
		if exists && !overwrite {
			perms = current.Merge(perms)
			merged++
		} else {
			created++
		}

		if !dryRun {
			if err := store.Set(ctx, userID, perms); err != nil {
				return fmt.Errorf("failed to write %s: %w", userID, err)
			}
		}
		slog.Debug("Imported permissions", "user_id", userID, "keys", len(perms), "existed", exists)
	}

	slog.Info("Import summary",
		"created", created,
		"merged", merged,
		"skipped", len(skipped),
		"duration_ms", time.Since(start).Milliseconds())

	if dryRun {
		return nil
	}

	all, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	for _, userID := range userIDs {
		if _, ok := all[userID]; !ok {
			slog.Warn("Imported entry missing after write", "user_id", userID)
		}
	}
	slog.Info("Store verification", "size", len(all))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// sanitizeURL hides the password of a Redis URL for logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
