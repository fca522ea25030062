// Package auth manages the Spotify OAuth credential: PKCE authorization,
// secure persistence, expiry tracking and refresh.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/justestif/go-spotify-social/internal/logging"
	"github.com/justestif/go-spotify-social/internal/metrics"
	"github.com/justestif/go-spotify-social/internal/securestore"
)

const (
	// DefaultRedirectURI uses explicit IPv4 loopback as required by Spotify for local development.
	// See: https://developer.spotify.com/documentation/web-api/concepts/redirect-uri
	DefaultRedirectURI = "http://127.0.0.1:8080/callback"

	defaultHTTPTimeout = 15 * time.Second
	defaultExpiresIn   = time.Hour
)

// DefaultScopes are the scopes needed for listening stats and profile data.
var DefaultScopes = []string{
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserReadRecentlyPlayed,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
}

// ErrMissingClientID is returned when the manager is built without a client ID.
var ErrMissingClientID = errors.New("missing Spotify client ID")

// ConnectionState describes the stored credential without touching the network.
type ConnectionState string

const (
	Disconnected ConnectionState = "disconnected"
	Connected    ConnectionState = "connected"
	NeedsRefresh ConnectionState = "needs_refresh"
)

// ConnectionNotifier is told when the account is connected or disconnected.
// Notifications are best-effort: failures are logged and never returned.
type ConnectionNotifier interface {
	SetSpotifyConnected(ctx context.Context, connected bool) error
}

// Config holds the public client registration.
type Config struct {
	ClientID    string
	RedirectURI string
	Scopes      []string
	AuthURL     string
	TokenURL    string
}

// TokenManager owns the credential lifecycle.
type TokenManager struct {
	oauth      *oauth2.Config
	store      securestore.Store
	httpClient *http.Client
	now        func() time.Time
	log        logrus.FieldLogger
	metrics    *metrics.Recorder
	notifier   ConnectionNotifier
	requestTTL time.Duration

	pending *pendingRequests
	refresh singleflight.Group
}

// Option configures a TokenManager.
type Option func(*TokenManager)

// WithHTTPClient sets the client used for token endpoint requests.
func WithHTTPClient(c *http.Client) Option {
	return func(m *TokenManager) {
		m.httpClient = c
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *TokenManager) {
		m.log = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(m *TokenManager) {
		m.metrics = r
	}
}

// WithNotifier sets the connection notifier.
func WithNotifier(n ConnectionNotifier) Option {
	return func(m *TokenManager) {
		m.notifier = n
	}
}

// WithRequestTTL sets how long pending authorization requests stay valid.
func WithRequestTTL(d time.Duration) Option {
	return func(m *TokenManager) {
		m.requestTTL = d
	}
}

// NewTokenManager creates a TokenManager persisting into store.
// Returns ErrMissingClientID if cfg.ClientID is empty.
func NewTokenManager(cfg Config, store securestore.Store, opts ...Option) (*TokenManager, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = DefaultRedirectURI
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = spotifyauth.AuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = spotifyauth.TokenURL
	}

	m := &TokenManager{
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURI,
			Scopes:      cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		store:      store,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		now:        time.Now,
		log:        logging.Discard(),
		requestTTL: DefaultRequestTTL,
		pending:    newPendingRequests(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// BuildAuthorizationRequest creates a PKCE verifier, challenge and state and
// registers the request as pending until its callback arrives.
func (m *TokenManager) BuildAuthorizationRequest(ctx context.Context) (*AuthorizationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()

	req := newAuthorizationRequest()
	req.State = state
	req.CodeVerifier = verifier
	req.CodeChallenge = oauth2.S256ChallengeFromVerifier(verifier)
	req.RedirectURI = m.oauth.RedirectURL
	req.ClientID = m.oauth.ClientID
	req.ExpiresAt = m.now().Add(m.requestTTL)
	req.URL = m.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	m.pending.add(req, m.now())
	m.log.WithField("expires_at", req.ExpiresAt).Debug("authorization request registered")
	return req, nil
}

// CompleteAuthorization handles a provider callback: it consumes the pending
// request for state, exchanges code (unless the provider reported
// providerErr) and resolves the request with the outcome.
func (m *TokenManager) CompleteAuthorization(ctx context.Context, state, code, providerErr string) (*Credential, error) {
	req := m.pending.take(state, m.now())
	if req == nil {
		return nil, ErrUnknownState
	}

	if providerErr != "" {
		err := &AuthExchangeError{Code: providerErr, Description: "authorization was not granted"}
		m.metrics.TokenExchange(false)
		req.resolve(nil, err)
		return nil, err
	}

	cred, err := m.ExchangeCodeForToken(ctx, code, req.CodeVerifier)
	req.resolve(cred, err)
	return cred, err
}

// ExchangeCodeForToken trades an authorization code and its PKCE verifier
// for tokens and persists them.
func (m *TokenManager) ExchangeCodeForToken(ctx context.Context, code, codeVerifier string) (*Credential, error) {
	tok, err := m.oauth.Exchange(m.oauthContext(ctx), code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		m.metrics.TokenExchange(false)
		exErr := newAuthExchangeError(err)
		m.log.WithFields(logrus.Fields{
			"error_code": exErr.Code,
			"status":     exErr.StatusCode,
		}).Warn("authorization code exchange failed")
		return nil, exErr
	}

	cred := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    m.expiresAt(tok),
	}
	if err := saveCredential(ctx, m.store, cred); err != nil {
		m.metrics.TokenExchange(false)
		return nil, fmt.Errorf("persisting credential: %w", err)
	}
	// A refresh token left over from an earlier grant must not outlive it.
	if cred.RefreshToken == "" {
		if err := m.store.DeleteItem(ctx, KeyRefreshToken); err != nil && !errors.Is(err, securestore.ErrNotFound) {
			m.metrics.TokenExchange(false)
			return nil, fmt.Errorf("clearing previous refresh token: %w", err)
		}
	}

	m.metrics.TokenExchange(true)
	m.log.WithField("expires_at", cred.ExpiresAt).Info("spotify account connected")
	m.notify(ctx, true)
	return cred, nil
}

// GetValidAccessToken returns an access token that is not past its expiry,
// refreshing exactly once first if needed.
func (m *TokenManager) GetValidAccessToken(ctx context.Context) (string, error) {
	cred, err := loadCredential(ctx, m.store)
	if err != nil {
		return "", fmt.Errorf("loading credential: %w", err)
	}
	if cred == nil {
		return "", &NotConnectedError{}
	}
	if !cred.expired(m.now()) {
		return cred.AccessToken, nil
	}
	return m.Refresh(ctx)
}

// Refresh exchanges the stored refresh token for a new access token.
// Concurrent calls share a single request, which no single caller can
// cancel; each caller stops waiting when its own ctx is done. On failure the
// stored credential is left untouched.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	ch := m.refresh.DoChan("refresh", func() (any, error) {
		return m.doRefresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (m *TokenManager) doRefresh(ctx context.Context) (string, error) {
	cred, err := loadCredential(ctx, m.store)
	if err != nil {
		return "", fmt.Errorf("loading credential: %w", err)
	}
	if cred == nil {
		return "", &NotConnectedError{}
	}
	if cred.RefreshToken == "" {
		m.metrics.TokenRefresh(false)
		return "", &RefreshError{Err: ErrNoRefreshToken}
	}

	src := m.oauth.TokenSource(m.oauthContext(ctx), &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		m.metrics.TokenRefresh(false)
		rErr := newRefreshError(err)
		m.log.WithFields(logrus.Fields{
			"error_code": rErr.Code,
			"status":     rErr.StatusCode,
		}).Warn("token refresh failed")
		return "", rErr
	}

	next := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: cred.RefreshToken,
		ExpiresAt:    m.expiresAt(tok),
	}
	if tok.RefreshToken != "" {
		next.RefreshToken = tok.RefreshToken
	}
	if err := saveCredential(ctx, m.store, next); err != nil {
		m.metrics.TokenRefresh(false)
		return "", fmt.Errorf("persisting refreshed credential: %w", err)
	}

	m.metrics.TokenRefresh(true)
	m.log.WithFields(logrus.Fields{
		"expires_at": next.ExpiresAt,
		"rotated":    next.RefreshToken != cred.RefreshToken,
	}).Debug("access token refreshed")
	return next.AccessToken, nil
}

// IsConnected reports whether a usable token is available, attempting one
// refresh when the stored token has expired. It never returns an error.
func (m *TokenManager) IsConnected(ctx context.Context) bool {
	_, err := m.GetValidAccessToken(ctx)
	if err != nil && !errors.Is(err, ErrNotConnected) {
		m.log.WithError(err).Warn("checking spotify connection")
	}
	return err == nil
}

// Status reports the connection state without refreshing.
func (m *TokenManager) Status(ctx context.Context) ConnectionState {
	cred, err := loadCredential(ctx, m.store)
	if err != nil {
		m.log.WithError(err).Warn("reading credential for status")
		return Disconnected
	}
	switch {
	case cred == nil:
		return Disconnected
	case cred.expired(m.now()):
		return NeedsRefresh
	default:
		return Connected
	}
}

// Disconnect deletes the stored credential. Calling it with nothing stored
// succeeds.
func (m *TokenManager) Disconnect(ctx context.Context) error {
	if err := deleteCredential(ctx, m.store); err != nil {
		return fmt.Errorf("disconnecting: %w", err)
	}
	m.log.Info("spotify account disconnected")
	m.notify(ctx, false)
	return nil
}

// PendingRequests returns the number of outstanding authorization requests.
func (m *TokenManager) PendingRequests() int {
	return m.pending.len()
}

func (m *TokenManager) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// expiresAt computes the expiry from expires_in against the manager clock.
func (m *TokenManager) expiresAt(tok *oauth2.Token) time.Time {
	switch {
	case tok.ExpiresIn > 0:
		return m.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	case !tok.Expiry.IsZero():
		return tok.Expiry
	default:
		return m.now().Add(defaultExpiresIn)
	}
}

func (m *TokenManager) notify(ctx context.Context, connected bool) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.SetSpotifyConnected(ctx, connected); err != nil {
		m.log.WithError(err).WithField("connected", connected).Warn("updating connection flag")
	}
}
