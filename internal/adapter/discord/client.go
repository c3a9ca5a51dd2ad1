// Package discord is the identity provider client: authorization URL,
// code exchange, token refresh and the current-user lookup.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pscheid92/ticketdash/internal/domain"
	"golang.org/x/oauth2"
)

const (
	DefaultAPIURL   = "https://discord.com/api"
	httpCallTimeout = 10 * time.Second
	maxProfileBytes = 1 << 20
)

type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	// APIURL is the API root; authorize, token and users/@me hang off it.
	APIURL     string
	HTTPClient *http.Client
}

type Client struct {
	oauth      *oauth2.Config
	apiURL     string
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	apiURL := strings.TrimRight(opts.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpCallTimeout}
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Scopes:       opts.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   apiURL + "/oauth2/authorize",
				TokenURL:  apiURL + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiURL:     apiURL,
		httpClient: httpClient,
	}
}

// Configured reports whether a client id is present.
func (c *Client) Configured() bool {
	return c.oauth.ClientID != ""
}

// AuthCodeURL builds the browser redirect to the authorize endpoint.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades a single-use authorization code for a token pair.
// There is no retry: the provider rejects a reused code.
func (c *Client) Exchange(ctx context.Context, code string) (domain.TokenPair, error) {
	token, err := c.oauth.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", domain.ErrTokenExchange, describe(err))
	}
	return toTokenPair(token), nil
}

// Refresh performs the refresh_token grant. Nothing calls it automatically.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if refreshToken == "" {
		return domain.TokenPair{}, fmt.Errorf("%w: empty refresh token", domain.ErrTokenRefresh)
	}

	// An expired token forces the source to use the refresh grant.
	source := c.oauth.TokenSource(c.withHTTPClient(ctx), &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Unix(1, 0),
	})
	token, err := source.Token()
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", domain.ErrTokenRefresh, describe(err))
	}
	return toTokenPair(token), nil
}

type userResponse struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	GlobalName    *string `json:"global_name"`
	Avatar        *string `json:"avatar"`
}

// FetchIdentity resolves a bearer token to the current user.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/users/@me", nil)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: failed to create user request: %w", domain.ErrIdentityFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: failed to execute user request: %w", domain.ErrIdentityFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Identity{}, fmt.Errorf("%w: discord returned status %d", domain.ErrIdentityFetch, resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes)).Decode(&user); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: failed to decode user response: %w", domain.ErrIdentityFetch, err)
	}
	if user.ID == "" {
		return domain.Identity{}, fmt.Errorf("%w: no user id returned", domain.ErrIdentityFetch)
	}

	identity := domain.Identity{
		ID:            user.ID,
		Username:      user.Username,
		Discriminator: user.Discriminator,
	}
	if user.GlobalName != nil {
		identity.GlobalName = *user.GlobalName
	}
	if user.Avatar != nil {
		identity.Avatar = *user.Avatar
	}
	return identity, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func toTokenPair(token *oauth2.Token) domain.TokenPair {
	return domain.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
}

// describe keeps the status code of provider rejections and drops the
// response body, which may echo request parameters.
func describe(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		if retrieveErr.ErrorCode != "" {
			return fmt.Errorf("discord returned status %d (%s)", retrieveErr.Response.StatusCode, retrieveErr.ErrorCode)
		}
		return fmt.Errorf("discord returned status %d", retrieveErr.Response.StatusCode)
	}
	return err
}
