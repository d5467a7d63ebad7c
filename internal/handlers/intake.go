package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/intake"
)

// maxBodyBytes bounds request bodies on the intake routes
const maxBodyBytes = 4 << 10

type addEntryRequest struct {
	AmountMl int `json:"amount_ml"`
}

type setGoalRequest struct {
	GoalMl int `json:"goal_ml"`
}

// GetToday returns today's ledger
func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read ledger", err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// GetDay returns the ledger for {date} (YYYY-M-D)
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := intake.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-M-D", err)
		return
	}

	snapshot, err := h.ledger.Day(r.Context(), date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read ledger", err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// AddEntry records an intake for today
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, intake.ErrInvalidAmount.Error(), err)
		return
	}

	result, err := h.ledger.Add(r.Context(), req.AmountMl)
	if errors.Is(err, intake.ErrInvalidAmount) {
		respondError(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save entry", err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// RemoveEntry deletes today's entry {id}. Unknown ids succeed with the unchanged total.
func (h *Handler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "entry id must be an integer", err)
		return
	}

	total, err := h.ledger.Remove(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to remove entry", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"total_ml": total})
}

// ClearToday empties today's ledger
func (h *Handler) ClearToday(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Clear(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to clear ledger", err)
		return
	}

	snapshot, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read ledger", err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// SetGoal updates the daily goal
func (h *Handler) SetGoal(w http.ResponseWriter, r *http.Request) {
	var req setGoalRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "goal_ml must be an integer", err)
		return
	}

	err := h.ledger.SetGoal(r.Context(), req.GoalMl)
	if errors.Is(err, intake.ErrGoalOutOfRange) {
		respondError(w, http.StatusUnprocessableEntity, err.Error(), err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save goal", err)
		return
	}

	snapshot, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read ledger", err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
