package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shiftcal/shiftcal/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Sync trigger and run history
	r.HandleFunc("/api/sync", deps.SyncHandler.TriggerSync).Methods("POST")
	r.HandleFunc("/api/runs", deps.SyncHandler.GetRuns).Methods("GET")

	// Health
	r.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	// Preflight requests are matched here so the CORS middleware can answer
	// them with 204; without this catch-all mux would return 405 before the
	// middleware runs.
	r.PathPrefix("/api/").Methods("OPTIONS").HandlerFunc(func(http.ResponseWriter, *http.Request) {})
}
