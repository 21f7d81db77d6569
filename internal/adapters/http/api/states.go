package api

import (
	"context"
	"net/http"

	"github.com/okian/covid19india/internal/domain/model"
	"github.com/okian/covid19india/pkg/logger"
)

// StateDependencies defines the read operations over states.
type StateDependencies interface {
	ListStates(ctx context.Context) ([]model.State, error)
	GetState(ctx context.Context, stateID string) (model.State, error)
	StateStats(ctx context.Context, stateID string) (model.StateStats, error)
}

// StatesHandler handles state requests.
type StatesHandler struct {
	deps StateDependencies
	log  logger.Logger
}

// NewStatesHandler creates a new states handler.
func NewStatesHandler(deps StateDependencies, log logger.Logger) *StatesHandler {
	return &StatesHandler{deps: deps, log: log}
}

// HandleListStates handles GET /states/ requests.
func (h *StatesHandler) HandleListStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.deps.ListStates(r.Context())
	if err != nil {
		writeInternalError(w, r, h.log, "list_states", err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

// HandleGetState handles GET /states/{stateId}/ requests.
func (h *StatesHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.GetState(r.Context(), r.PathValue("stateId"))
	if err != nil {
		if isNotFound(err) {
			writeText(w, http.StatusNotFound, msgStateNotFound)
			return
		}
		writeInternalError(w, r, h.log, "get_state", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleStateStats handles GET /states/{stateId}/stats/ requests. A state
// without districts, known or not, yields null totals.
func (h *StatesHandler) HandleStateStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.deps.StateStats(r.Context(), r.PathValue("stateId"))
	if err != nil {
		writeInternalError(w, r, h.log, "state_stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
