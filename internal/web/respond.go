package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-social/internal/auth"
	"github.com/justestif/go-spotify-social/internal/db"
	"github.com/justestif/go-spotify-social/internal/music"
	"github.com/justestif/go-spotify-social/internal/refresh"
	"github.com/justestif/go-spotify-social/internal/stats"
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Source string `json:"source,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encoding response")
	}
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status, body := classifyError(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, log, status, body)
}

func classifyError(err error) (int, errorResponse) {
	body := errorResponse{Error: err.Error()}

	var (
		exErr    *auth.AuthExchangeError
		fetchErr *stats.StatsFetchError
		provErr  *music.ProviderError
	)
	switch {
	case errors.Is(err, auth.ErrNotConnected), errors.Is(err, refresh.ErrNotConnected):
		body.Code = "not_connected"
		return http.StatusUnauthorized, body
	case errors.As(err, &exErr):
		body.Code = exErr.Code
		return http.StatusBadRequest, body
	case errors.Is(err, auth.ErrUnknownState):
		return http.StatusBadRequest, body
	case errors.As(err, &fetchErr):
		body.Source = fetchErr.Source
		body.Kind = string(fetchErr.Kind)
		return http.StatusBadGateway, body
	case errors.As(err, &provErr):
		if provErr.StatusCode == http.StatusNotFound || provErr.StatusCode == http.StatusBadRequest {
			return provErr.StatusCode, body
		}
		return http.StatusBadGateway, body
	case errors.Is(err, music.ErrMalformedResponse):
		return http.StatusBadGateway, body
	case errors.Is(err, refresh.ErrRefreshTooRecent):
		return http.StatusTooManyRequests, body
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, stats.ErrInvalidRange),
		errors.Is(err, db.ErrInvalidItemType),
		errors.Is(err, db.ErrInvalidRating),
		errors.Is(err, db.ErrEmptyBody),
		errors.Is(err, db.ErrSelfFriend),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, body
	}

	body.Error = "internal error"
	return http.StatusInternalServerError, body
}

var errBadRequest = errors.New("bad request")

// decodeJSON reads a JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// queryLimit parses ?limit= with a default and an upper bound of 50.
func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, 50)
}

// queryBool reports whether a query flag is set to a true value.
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
