// Package handlers contains the HTTP handlers for the analytics API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finlens/backend/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondDomainError maps the analytics error taxonomy onto HTTP
// statuses: bad requests for caller mistakes, 422 for data that exists
// but cannot support the computation, 500 otherwise.
func respondDomainError(w http.ResponseWriter, err error) {
	var (
		missing     *contracts.MissingInputError
		population  *contracts.InsufficientPeerPopulationError
		trendLength *contracts.InsufficientTrendLengthError
		units       *contracts.InconsistentUnitsError
		weights     *contracts.InvalidWeightsError
	)

	switch {
	case errors.As(err, &missing):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &units), errors.As(err, &weights):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &population), errors.As(err, &trendLength):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
