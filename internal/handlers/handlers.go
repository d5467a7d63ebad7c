package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/hub"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

// StandingsService serves and refreshes the normalized standings view
type StandingsService interface {
	Latest() (view models.NormalizedView, refreshedAt time.Time, ok bool)
	Refresh(ctx context.Context) models.NormalizedView
}

// IntakeLedger is the intake ledger surface exposed over HTTP
type IntakeLedger interface {
	Add(ctx context.Context, amountMl int) (models.AddResult, error)
	Remove(ctx context.Context, entryID int64) (int, error)
	Clear(ctx context.Context) error
	SetGoal(ctx context.Context, goalMl int) error
	Snapshot(ctx context.Context) (models.LedgerSnapshot, error)
	Day(ctx context.Context, date time.Time) (models.LedgerSnapshot, error)
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	standings StandingsService
	ledger    IntakeLedger
	hub       *hub.Hub
	ctx       context.Context
}

// NewHandler creates a new handler. ctx bounds websocket client lifetimes,
// which outlive the upgrade request.
func NewHandler(ctx context.Context, standings StandingsService, ledger IntakeLedger, h *hub.Hub) *Handler {
	return &Handler{
		standings: standings,
		ledger:    ledger,
		hub:       h,
		ctx:       ctx,
	}
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	_, refreshedAt, ready := h.standings.Latest()

	body := map[string]interface{}{
		"status":          "healthy",
		"timestamp":       time.Now().UTC(),
		"service":         "dashboard",
		"standings_ready": ready,
	}
	if ready {
		body["standings_refreshed_at"] = refreshedAt.UTC()
	}
	if h.hub != nil {
		body["active_clients"] = h.hub.GetClientCount()
	}

	respondJSON(w, http.StatusOK, body)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil && status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg(message)
	}

	respondJSON(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
