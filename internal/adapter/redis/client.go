// Package redis persists dashboard permission overrides in a Redis hash.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// CommandObserver receives one call per executed command.
type CommandObserver interface {
	Observe(command string, seconds float64, failed bool)
}

// NewClient parses redisURL (e.g. "redis://localhost:6379/0"), verifies
// the connection and installs the metrics hook when an observer is given.
func NewClient(ctx context.Context, redisURL string, observer CommandObserver) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	if observer != nil {
		rdb.AddHook(&metricsHook{observer: observer})
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

type metricsHook struct {
	observer CommandObserver
}

var _ goredis.Hook = (*metricsHook)(nil)

func (h *metricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.observer.Observe("dial", 0, true)
		}
		return conn, err
	}
}

func (h *metricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observer.Observe(cmd.Name(), time.Since(start).Seconds(), failed(err))
		return err
	}
}

func (h *metricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.observer.Observe("pipeline", time.Since(start).Seconds(), failed(err))
		return err
	}
}

// A missing key is an answer, not a failure.
func failed(err error) bool {
	return err != nil && !errors.Is(err, goredis.Nil)
}
