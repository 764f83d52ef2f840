package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/finlens/backend/internal/api/handlers"
	"github.com/finlens/backend/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(h *handlers.AnalyticsHandler, limiter *rate.Limiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api/v1").Subrouter()

	// Snapshot endpoints
	api.HandleFunc("/entities", h.ListEntities).Methods("GET")
	api.HandleFunc("/entities/{entity}/periods", h.ListPeriods).Methods("GET")
	api.HandleFunc("/entities/{entity}/snapshots/{period}", h.GetSnapshot).Methods("GET")

	// Analysis endpoints
	api.HandleFunc("/entities/{entity}/report", h.GetReport).Methods("GET")
	api.HandleFunc("/entities/{entity}/trends/{metric}", h.GetTrend).Methods("GET")
	api.HandleFunc("/entities/{entity}/warnings", h.GetWarnings).Methods("GET")
	api.HandleFunc("/entities/{entity}/valuation", h.GetValueCreation).Methods("GET")

	// Cross-sectional endpoints
	api.HandleFunc("/peers/normalize", h.NormalizePeers).Methods("POST")
	api.HandleFunc("/peers/compare", h.ComparePeers).Methods("POST")
	api.HandleFunc("/peers/factors", h.ComputeFactors).Methods("POST")

	// Scoring endpoints
	api.HandleFunc("/scores/management", h.ScoreManagement).Methods("POST")
	api.HandleFunc("/entities/{entity}/scores/earnings", h.ScoreEarnings).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(rateLimitMiddleware(limiter))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "finlens-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// rateLimitMiddleware rejects requests beyond the configured rate.
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
