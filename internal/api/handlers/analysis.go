package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/ews"
	"github.com/finlens/backend/internal/valuation"
)

// GetReport returns the full analysis report for an entity at its
// latest period.
// GET /api/v1/entities/{entity}/report
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	entityID := mux.Vars(r)["entity"]

	report, err := h.builder.Build(r.Context(), entityID)
	if err != nil {
		h.logger.WithError(err).WithField("entity", entityID).Error("Failed to build report")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetTrend returns the trend analysis for one entity and metric.
// GET /api/v1/entities/{entity}/trends/{metric}
func (h *AnalyticsHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entityID := vars["entity"]

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

	series := &contracts.TrendSeries{EntityID: entityID, Snapshots: snapshots}
	result, err := h.trend.Analyze(r.Context(), series, vars["metric"])
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// GetWarnings evaluates the early-warning catalog on the entity's
// latest period.
// GET /api/v1/entities/{entity}/warnings
func (h *AnalyticsHandler) GetWarnings(w http.ResponseWriter, r *http.Request) {
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

	series := &contracts.TrendSeries{EntityID: entityID, Snapshots: snapshots}
	report, err := h.warnings.Evaluate(r.Context(), series, ews.ExtraSignals{})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetValueCreation returns the ROIC vs WACC analysis for the entity's
// latest period. The beta, cost_of_debt and tax_rate query parameters
// override the configured assumptions.
// GET /api/v1/entities/{entity}/valuation?beta=1.2&tax_rate=0.25
func (h *AnalyticsHandler) GetValueCreation(w http.ResponseWriter, r *http.Request) {
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

	beta := queryFloat(r, "beta", 1.0)
	inputs := valuation.CapitalInputs{
		CostOfEquity:     contracts.Num(h.valuation.CostOfEquityCAPM(beta)),
		CostOfDebtPretax: valuation.EstimateCostOfDebt(current),
		TaxRate:          contracts.Num(queryFloat(r, "tax_rate", h.cfg.Valuation.DefaultTaxRate)),
	}
	if v := r.URL.Query().Get("cost_of_debt"); v != "" {
		inputs.CostOfDebtPretax = contracts.Num(queryFloat(r, "cost_of_debt", 0))
	}

	result, err := h.valuation.Analyze(r.Context(), current, inputs)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
