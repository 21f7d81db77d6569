package api

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/okian/covid19india/internal/domain/model"
	"github.com/okian/covid19india/pkg/logger"
)

// DistrictDependencies defines the operations over districts.
type DistrictDependencies interface {
	CreateDistrict(ctx context.Context, in model.DistrictInput) (int64, error)
	GetDistrict(ctx context.Context, districtID string) (model.District, error)
	DeleteDistrict(ctx context.Context, districtID string) error
	UpdateDistrict(ctx context.Context, districtID string, in model.DistrictInput) error
	DistrictStateName(ctx context.Context, districtID string) (model.DistrictState, error)
}

// DistrictsHandler handles district requests.
type DistrictsHandler struct {
	deps DistrictDependencies
	log  logger.Logger
}

// NewDistrictsHandler creates a new districts handler.
func NewDistrictsHandler(deps DistrictDependencies, log logger.Logger) *DistrictsHandler {
	return &DistrictsHandler{deps: deps, log: log}
}

// HandleCreateDistrict handles POST /districts/ requests.
func (h *DistrictsHandler) HandleCreateDistrict(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	if _, err := h.deps.CreateDistrict(r.Context(), in); err != nil {
		writeInternalError(w, r, h.log, "create_district", err)
		return
	}
	writeText(w, http.StatusOK, msgDistrictAdded)
}

// HandleGetDistrict handles GET /districts/{districtId}/ requests.
func (h *DistrictsHandler) HandleGetDistrict(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.GetDistrict(r.Context(), r.PathValue("districtId"))
	if err != nil {
		if isNotFound(err) {
			writeText(w, http.StatusNotFound, msgDistrictNotFound)
			return
		}
		writeInternalError(w, r, h.log, "get_district", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleDeleteDistrict handles DELETE /districts/{districtId}/ requests.
// Removing an id that does not exist still reports success.
func (h *DistrictsHandler) HandleDeleteDistrict(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteDistrict(r.Context(), r.PathValue("districtId")); err != nil {
		writeInternalError(w, r, h.log, "delete_district", err)
		return
	}
	writeText(w, http.StatusOK, msgDistrictRemoved)
}

// HandleUpdateDistrict handles PUT /districts/{districtId}/ requests.
// Updating an id that does not exist still reports success.
func (h *DistrictsHandler) HandleUpdateDistrict(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.deps.UpdateDistrict(r.Context(), r.PathValue("districtId"), in); err != nil {
		writeInternalError(w, r, h.log, "update_district", err)
		return
	}
	writeText(w, http.StatusOK, msgDistrictUpdated)
}

// HandleDistrictDetails handles GET /districts/{districtId}/details/ requests.
func (h *DistrictsHandler) HandleDistrictDetails(w http.ResponseWriter, r *http.Request) {
	ds, err := h.deps.DistrictStateName(r.Context(), r.PathValue("districtId"))
	if err != nil {
		if isNotFound(err) {
			writeText(w, http.StatusNotFound, msgDistrictNotFound)
			return
		}
		writeInternalError(w, r, h.log, "district_details", err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// decode reads the district body. Bodies not declared as application/json
// are ignored and behave like an empty object.
func (h *DistrictsHandler) decode(w http.ResponseWriter, r *http.Request) (model.DistrictInput, bool) {
	if !isJSON(r) {
		return model.DistrictInput{}, true
	}
	in, err := model.DecodeDistrictInput(r.Body)
	if err != nil {
		h.log.Debug(r.Context(), "rejecting district body", logger.Error(err))
		writeText(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", ErrBadRequest, err))
		return model.DistrictInput{}, false
	}
	return in, true
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
