// Package botapi talks to the bot service that owns per-user dashboard grants.
package botapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pscheid92/ticketdash/internal/domain"
	"github.com/sony/gobreaker"
)

const (
	secretHeader        = "X-API-Secret"
	defaultTimeout      = 5 * time.Second
	maxResponseBytes    = 1 << 20
	breakerOpenDuration = 30 * time.Second
	breakerTripAfter    = 5
)

var errUpstream = errors.New("bot service error")

// Permissions is the bot's view of one user.
type Permissions struct {
	IsOwner   bool `json:"isOwner"`
	Dashboard bool `json:"dashboard"`
}

type Options struct {
	BaseURL    string
	Secret     string
	HTTPClient *http.Client
	// OnBreakerStateChange is called with the new state name ("closed", "half-open", "open").
	OnBreakerStateChange func(state string)
}

// Client is the remote authority source. Every check is a single attempt;
// transport errors, non-2xx answers and an open circuit breaker all yield
// Inconclusive so the authorization chain moves on.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

var _ domain.AuthoritySource = (*Client)(nil)

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	onChange := opts.OnBreakerStateChange
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bot-api",
		MaxRequests: 1,
		Timeout:     breakerOpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		IsSuccessful: func(err error) bool {
			var rejected *rejectedError
			return err == nil || errors.As(err, &rejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			if onChange != nil {
				onChange(to.String())
			}
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		secret:     opts.Secret,
		httpClient: httpClient,
		breaker:    breaker,
	}
}

func (c *Client) Name() string { return "bot_api" }

func (c *Client) Check(ctx context.Context, identityID string) domain.Verdict {
	perms, err := c.GetPermissions(ctx, identityID)
	if err != nil {
		slog.WarnContext(ctx, "Bot permissions unavailable, skipping", "identity_id", identityID, "error", err)
		return domain.Inconclusive
	}
	if perms.IsOwner || perms.Dashboard {
		return domain.Affirmative
	}
	return domain.Denied
}

// GetPermissions fetches /permissions/{userID} through the circuit breaker.
func (c *Client) GetPermissions(ctx context.Context, userID string) (*Permissions, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, userID)
	})
	if err != nil {
		var rejected *rejectedError
		if errors.As(err, &rejected) {
			return nil, rejected.err
		}
		return nil, fmt.Errorf("permissions for %s: %w", userID, err)
	}
	return result.(*Permissions), nil
}

// State exposes the breaker state for health reporting and tests.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// rejectedError marks answers that prove the service is up (4xx, bad JSON)
// so they do not count against the breaker.
type rejectedError struct {
	err error
}

func (e *rejectedError) Error() string { return e.err.Error() }

func (c *Client) fetch(ctx context.Context, userID string) (*Permissions, error) {
	endpoint := fmt.Sprintf("%s/permissions/%s", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create permissions request: %w", err)
	}
	req.Header.Set(secretHeader, c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute permissions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", errUpstream, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &rejectedError{err: fmt.Errorf("bot service returned status %d", resp.StatusCode)}
	}

	var perms Permissions
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&perms); err != nil {
		return nil, &rejectedError{err: fmt.Errorf("failed to decode permissions response: %w", err)}
	}
	return &perms, nil
}
