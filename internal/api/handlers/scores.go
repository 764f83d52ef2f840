package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/finlens/backend/internal/scoring"
)

// ScoreManagement computes the management-quality composite from posted
// governance observations.
// POST /api/v1/scores/management
func (h *AnalyticsHandler) ScoreManagement(w http.ResponseWriter, r *http.Request) {
	var inputs scoring.ManagementInputs
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	score, err := h.management.Score(r.Context(), inputs)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, score)
}

// ScoreEarnings computes the earnings-quality composite for the entity's
// latest period from its stored history.
// GET /api/v1/entities/{entity}/scores/earnings
func (h *AnalyticsHandler) ScoreEarnings(w http.ResponseWriter, r *http.Request) {
	entityID := mux.Vars(r)["entity"]

	snapshots, err := h.source.LoadSeries(r.Context(), entityID)
	if err != nil {
		h.logger.WithError(err).WithField("entity", entityID).Error("Failed to load series")
		respondError(w, http.StatusInternalServerError, "Failed to load series")
		return
	}
	if len(snapshots) == 0 {
		respondError(w, http.StatusNotFound, "No snapshots for entity "+entityID)
		return
	}

	current := snapshots[len(snapshots)-1]
	score, err := h.earnings.Score(r.Context(), current, snapshots[:len(snapshots)-1])
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, score)
}
