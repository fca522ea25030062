package auth

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

var (
	// ErrNotConnected matches any error meaning the user has to connect
	// Spotify again: no stored credential, or a refresh that failed.
	ErrNotConnected = errors.New("spotify account not connected")

	// ErrUnknownState is returned when a callback carries a state that has no
	// pending authorization request (never issued, already used, or expired).
	ErrUnknownState = errors.New("unknown or expired authorization state")

	// ErrRequestExpired resolves a pending authorization request that was
	// never completed within its lifetime.
	ErrRequestExpired = errors.New("authorization request expired")

	// ErrNoRefreshToken is wrapped by RefreshError when the stored credential
	// has no refresh token.
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// ErrAuthTimeout is returned when the OAuth callback is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")
)

// NotConnectedError is returned when no credential is stored.
type NotConnectedError struct{}

func (e *NotConnectedError) Error() string {
	return ErrNotConnected.Error()
}

// Is reports whether target is ErrNotConnected.
func (e *NotConnectedError) Is(target error) bool {
	return target == ErrNotConnected
}

// AuthExchangeError is returned when the authorization code cannot be
// exchanged for tokens, or the provider reported an error on the callback.
type AuthExchangeError struct {
	Code        string // RFC 6749 "error"
	Description string // RFC 6749 "error_description"
	StatusCode  int    // zero when no HTTP response was received
	Err         error
}

func (e *AuthExchangeError) Error() string {
	return "exchanging authorization code: " + describe(e.Code, e.Description, e.StatusCode, e.Err)
}

func (e *AuthExchangeError) Unwrap() error {
	return e.Err
}

// RefreshError is returned when the refresh grant fails. The stale
// credential is left in place.
type RefreshError struct {
	Code        string
	Description string
	StatusCode  int
	Err         error
}

func (e *RefreshError) Error() string {
	return "refreshing access token: " + describe(e.Code, e.Description, e.StatusCode, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNotConnected.
func (e *RefreshError) Is(target error) bool {
	return target == ErrNotConnected
}

func newAuthExchangeError(err error) *AuthExchangeError {
	e := &AuthExchangeError{Err: err}
	e.Code, e.Description, e.StatusCode = retrieveDetails(err)
	return e
}

func newRefreshError(err error) *RefreshError {
	e := &RefreshError{Err: err}
	e.Code, e.Description, e.StatusCode = retrieveDetails(err)
	return e
}

// retrieveDetails pulls the RFC 6749 error body out of an oauth2 error.
func retrieveDetails(err error) (code, description string, status int) {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return "", "", 0
	}
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	return re.ErrorCode, re.ErrorDescription, status
}

func describe(code, description string, status int, err error) string {
	switch {
	case code != "" && description != "":
		return fmt.Sprintf("%s: %s", code, description)
	case code != "":
		return code
	case err != nil:
		return err.Error()
	case status != 0:
		return fmt.Sprintf("status %d", status)
	}
	return "unknown error"
}
