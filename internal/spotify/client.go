// Package spotify adapts the Spotify Web API to the music domain types.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-social/internal/logging"
)

// DefaultLimit is the page size used for top items, recent plays and browse.
const DefaultLimit = 50

// TokenProvider supplies a valid user access token.
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context) (string, error)
}

// Client issues catalog requests on behalf of the connected user.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenProvider
	log        logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternative API root. It must end in "/".
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets the base HTTP client. Its timeout and transport are kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenProvider sets where browse calls get their token from.
func WithTokenProvider(p TokenProvider) Option {
	return func(c *Client) {
		c.tokens = p
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a catalog client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// api returns a library client sending token as the bearer credential.
func (c *Client) api(token string) *spotify.Client {
	hc := &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.httpClient.Transport,
		},
	}

	var opts []spotify.ClientOption
	if c.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(c.baseURL))
	}
	return spotify.New(hc, opts...)
}

// userAPI fetches a token from the provider and returns a library client.
func (c *Client) userAPI(ctx context.Context) (*spotify.Client, error) {
	if c.tokens == nil {
		return nil, fmt.Errorf("spotify client has no token provider")
	}
	token, err := c.tokens.GetValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.api(token), nil
}

// CurrentUser returns the connected user's ID and display name.
func (c *Client) CurrentUser(ctx context.Context) (id, displayName string, err error) {
	api, err := c.userAPI(ctx)
	if err != nil {
		return "", "", err
	}
	user, err := api.CurrentUser(ctx)
	if err != nil {
		return "", "", fmt.Errorf("getting current user: %w", wrapError(err))
	}
	return user.ID, user.DisplayName, nil
}
