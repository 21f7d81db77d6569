// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/covid19india/internal/domain/model"
	"github.com/okian/covid19india/pkg/logger"
)

// Plain text bodies returned by the API.
const (
	msgInternalError    = "Internal Server Error"
	msgStateNotFound    = "State Not Found"
	msgDistrictNotFound = "District Not Found"
	msgDistrictAdded    = "District Successfully Added"
	msgDistrictRemoved  = "District Removed"
	msgDistrictUpdated  = "District Details Updated"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the storage implementation.
type Dependencies interface {
	StateDependencies
	DistrictDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	statesHandler    *StatesHandler
	districtsHandler *DistrictsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	log := logger.Named("api")
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		statesHandler:    NewStatesHandler(deps, log),
		districtsHandler: NewDistrictsHandler(deps, log),
	}
}

// Register attaches all HTTP routes to mux. Resource routes answer with and
// without a trailing slash.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	handle(mux, http.MethodGet, "/states", "states", s.statesHandler.HandleListStates)
	handle(mux, http.MethodGet, "/states/{stateId}", "state", s.statesHandler.HandleGetState)
	handle(mux, http.MethodGet, "/states/{stateId}/stats", "state_stats", s.statesHandler.HandleStateStats)

	handle(mux, http.MethodPost, "/districts", "districts", s.districtsHandler.HandleCreateDistrict)
	handle(mux, http.MethodGet, "/districts/{districtId}", "district", s.districtsHandler.HandleGetDistrict)
	handle(mux, http.MethodDelete, "/districts/{districtId}", "district", s.districtsHandler.HandleDeleteDistrict)
	handle(mux, http.MethodPut, "/districts/{districtId}", "district", s.districtsHandler.HandleUpdateDistrict)
	handle(mux, http.MethodGet, "/districts/{districtId}/details", "district_details", s.districtsHandler.HandleDistrictDetails)
}

func handle(mux *http.ServeMux, method, path, endpoint string, h http.HandlerFunc) {
	wrapped := MetricsMiddleware(h, endpoint)
	mux.HandleFunc(method+" "+path, wrapped)
	mux.HandleFunc(method+" "+path+"/{$}", wrapped)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

// writeInternalError logs err and hides it behind a fixed 500 body.
func writeInternalError(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	log.Error(r.Context(), "request failed",
		logger.String("op", op),
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.Error(err))
	writeText(w, http.StatusInternalServerError, msgInternalError)
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
