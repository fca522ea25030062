package music

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is wrapped by catalog clients when a provider
// response cannot be decoded.
var ErrMalformedResponse = errors.New("malformed provider response")

// ProviderError is a non-2xx answer from the catalog provider.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Message)
}
