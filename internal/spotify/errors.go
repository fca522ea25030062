package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-social/internal/music"
)

// wrapError converts library errors into music.ProviderError or
// music.ErrMalformedResponse so callers need not know this package.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return &music.ProviderError{StatusCode: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &music.ProviderError{StatusCode: apiErrPtr.Status, Message: apiErrPtr.Message}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", music.ErrMalformedResponse, err)
	}
	return err
}
