package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultCallbackTimeout bounds how long the loopback flow waits for the browser.
const DefaultCallbackTimeout = 2 * time.Minute

const callbackSuccessPage = `<!DOCTYPE html>
<html>
<head><title>Spotify Connected</title></head>
<body>
<h1>Spotify Connected!</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`

// CallbackHandler completes authorization requests from the provider's
// redirect. It answers 400 for unknown state or a failed exchange.
func (m *TokenManager) CallbackHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		_, err := m.CompleteAuthorization(r.Context(), q.Get("state"), q.Get("code"), q.Get("error"))
		if err != nil {
			status := http.StatusBadRequest
			var exErr *AuthExchangeError
			if !errors.Is(err, ErrUnknownState) && !errors.As(err, &exErr) {
				status = http.StatusInternalServerError
			}
			http.Error(w, "Authentication failed: "+err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, callbackSuccessPage)
	})
}

// ConnectLoopback runs the whole authorization flow on a local callback
// server bound to the redirect URI's host. openURL is called with the
// authorization URL (print it or launch a browser).
func (m *TokenManager) ConnectLoopback(ctx context.Context, timeout time.Duration, openURL func(string)) (*Credential, error) {
	redirect, err := url.Parse(m.oauth.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redirect URI: %w", err)
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listening for callback: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(redirect.Path, m.CallbackHandler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server error: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	req, err := m.BuildAuthorizationRequest(ctx)
	if err != nil {
		return nil, err
	}
	openURL(req.URL)

	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		cred *Credential
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		cred, err := req.Wait(waitCtx)
		done <- outcome{cred, err}
	}()

	select {
	case out := <-done:
		if errors.Is(out.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrAuthTimeout
		}
		return out.cred, out.err
	case err := <-errCh:
		return nil, err
	}
}
