package handler

import (
	"net/http"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/frostvault/frostvault-backend/pkg/httputil"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// LocationHandler handles storage location endpoints
type LocationHandler struct {
	service *service.WarehouseService
	logger  *logger.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(svc *service.WarehouseService, log *logger.Logger) *LocationHandler {
	return &LocationHandler{
		service: svc,
		logger:  log,
	}
}

// List lists storage locations, optionally filtered by ?type=
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	category := domain.StorageCategory(r.URL.Query().Get("type"))
	if category != "" && !category.Valid() {
		httputil.Error(w, errors.Validation(map[string]string{
			"type": "must be one of: ambient, cold_storage",
		}))
		return
	}

	locations, err := h.service.ListLocations(r.Context(), category)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, locations, &httputil.Meta{Total: len(locations)})
}

// Get gets a storage location by ID
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	location, err := h.service.GetLocation(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, location)
}

// Create adds a storage location
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateLocationInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	location, err := h.service.CreateLocation(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, location)
}
