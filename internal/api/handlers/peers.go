package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/finlens/backend/internal/contracts"
)

// peerRequest names a metric and the cohort to compare. Every entity is
// loaded at the shared period before any statistics run.
type peerRequest struct {
	Metric   string   `json:"metric"`
	Period   string   `json:"period"`
	Entities []string `json:"entities"`
}

// NormalizePeers computes z-scores for one metric across a peer cohort.
// POST /api/v1/peers/normalize
func (h *AnalyticsHandler) NormalizePeers(w http.ResponseWriter, r *http.Request) {
	peers, metric, ok := h.loadPeerSet(w, r)
	if !ok {
		return
	}

	result, err := h.peers.Normalize(r.Context(), peers, metric)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ComparePeers ranks a peer cohort on one metric.
// POST /api/v1/peers/compare
func (h *AnalyticsHandler) ComparePeers(w http.ResponseWriter, r *http.Request) {
	peers, metric, ok := h.loadPeerSet(w, r)
	if !ok {
		return
	}

	result, err := h.peers.Compare(r.Context(), peers, metric)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ComputeFactors builds factor exposure vectors for a peer cohort.
// POST /api/v1/peers/factors
func (h *AnalyticsHandler) ComputeFactors(w http.ResponseWriter, r *http.Request) {
	peers, _, ok := h.loadPeerSet(w, r)
	if !ok {
		return
	}

	histories := make(map[string][]*contracts.Snapshot, len(peers.Snapshots))
	for _, s := range peers.Snapshots {
		series, err := h.source.LoadSeries(r.Context(), s.EntityID)
		if err != nil {
			h.logger.WithError(err).WithField("entity", s.EntityID).Error("Failed to load history")
			respondError(w, http.StatusInternalServerError, "Failed to load history")
			return
		}
		var history []*contracts.Snapshot
		for _, snap := range series {
			if snap.Period.Before(peers.Period) {
				history = append(history, snap)
			}
		}
		histories[s.EntityID] = history
	}

	vectors, err := h.factors.Compute(r.Context(), peers, histories)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// stored exposures are unclipped; the response carries a bounded view
	// for display alongside them
	clip := h.cfg.Factor.DisplayClip
	clipped := make(map[string]map[string]contracts.Metric, len(vectors))
	for id, v := range vectors {
		clipped[id] = v.Clipped(clip)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"period":       peers.Period,
		"display_clip": clip,
		"vectors":      vectors,
		"clipped":      clipped,
	})
}

// loadPeerSet decodes a peer request and loads every named entity at the
// shared period. Metric may be empty for requests that do not need one.
func (h *AnalyticsHandler) loadPeerSet(w http.ResponseWriter, r *http.Request) (*contracts.PeerSet, string, bool) {
	var req peerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, "", false
	}
	if len(req.Entities) == 0 {
		respondError(w, http.StatusBadRequest, "No entities given")
		return nil, "", false
	}

	period, err := contracts.ParsePeriod(req.Period)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, "", false
	}

	peers := &contracts.PeerSet{Period: period}
	for _, id := range req.Entities {
		s, err := h.source.Load(r.Context(), id, period)
		if err != nil {
			h.logger.WithError(err).WithField("entity", id).Error("Failed to load snapshot")
			respondError(w, http.StatusInternalServerError, "Failed to load snapshot for "+id)
			return nil, "", false
		}
		if s == nil {
			respondError(w, http.StatusNotFound, "No snapshot for "+id+" at "+period.String())
			return nil, "", false
		}
		peers.Snapshots = append(peers.Snapshots, s)
	}

	return peers, req.Metric, true
}
