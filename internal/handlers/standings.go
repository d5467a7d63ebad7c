package handlers

import (
	"net/http"
	"time"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

type standingsResponse struct {
	View        models.NormalizedView `json:"view"`
	RefreshedAt time.Time             `json:"refreshed_at"`
}

// GetStandings returns the latest normalized view
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	view, refreshedAt, ok := h.standings.Latest()
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "standings not loaded yet", nil)
		return
	}

	respondJSON(w, http.StatusOK, standingsResponse{
		View:        view,
		RefreshedAt: refreshedAt.UTC(),
	})
}

// RefreshStandings reloads the documents now and returns the new view
func (h *Handler) RefreshStandings(w http.ResponseWriter, r *http.Request) {
	view := h.standings.Refresh(r.Context())
	_, refreshedAt, _ := h.standings.Latest()

	respondJSON(w, http.StatusOK, standingsResponse{
		View:        view,
		RefreshedAt: refreshedAt.UTC(),
	})
}
