package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-spotify-social/internal/music"
	"github.com/justestif/go-spotify-social/internal/stats"
)

// parseRange reads the {range} URL parameter, accepting short aliases.
func parseRange(r *http.Request) (music.TimeRange, error) {
	raw := chi.URLParam(r, "range")
	tr, ok := music.ParseTimeRange(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", stats.ErrInvalidRange, raw)
	}
	return tr, nil
}

// GetStats returns the summary for a range (GET /api/stats/{range}?force=true).
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	tr, err := parseRange(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	summary, err := h.deps.Stats.GetSummary(r.Context(), tr, queryBool(r, "force"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, summary)
}

// InvalidateStats drops the cached summary (DELETE /api/stats/{range}).
func (h *Handlers) InvalidateStats(w http.ResponseWriter, r *http.Request) {
	tr, err := parseRange(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.deps.Stats.Invalidate(r.Context(), tr); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RefreshAll refreshes every range (POST /api/stats/refresh?force=true).
func (h *Handlers) RefreshAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.deps.Refresher.Refresh(r.Context(), queryBool(r, "force"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, result)
}
