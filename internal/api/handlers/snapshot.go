package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/finlens/backend/internal/contracts"
)

// ListEntities returns every entity with at least one snapshot.
// GET /api/v1/entities
func (h *AnalyticsHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.source.ListEntities(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list entities")
		respondError(w, http.StatusInternalServerError, "Failed to list entities")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(entities),
		"entities": entities,
	})
}

// ListPeriods returns the available periods for an entity, ascending.
// GET /api/v1/entities/{entity}/periods
func (h *AnalyticsHandler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	entityID := mux.Vars(r)["entity"]

	periods, err := h.source.ListPeriods(r.Context(), entityID)
	if err != nil {
		h.logger.WithError(err).WithField("entity", entityID).Error("Failed to list periods")
		respondError(w, http.StatusInternalServerError, "Failed to list periods")
		return
	}
	if len(periods) == 0 {
		respondError(w, http.StatusNotFound, "No snapshots for entity "+entityID)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entity_id": entityID,
		"periods":   periods,
	})
}

// GetSnapshot returns one entity/period snapshot with derived metrics.
// GET /api/v1/entities/{entity}/snapshots/{period}
func (h *AnalyticsHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entityID := vars["entity"]

	period, err := contracts.ParsePeriod(vars["period"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.source.Load(r.Context(), entityID, period)
	if err != nil {
		h.logger.WithError(err).WithField("entity", entityID).Error("Failed to load snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	if snapshot == nil {
		respondError(w, http.StatusNotFound, "Snapshot not found")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}
