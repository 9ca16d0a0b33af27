package handler

import (
	"net/http"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/httputil"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// TemperatureHandler handles cold storage temperature endpoints
type TemperatureHandler struct {
	service *service.WarehouseService
	logger  *logger.Logger
}

// NewTemperatureHandler creates a new temperature handler
func NewTemperatureHandler(svc *service.WarehouseService, log *logger.Logger) *TemperatureHandler {
	return &TemperatureHandler{
		service: svc,
		logger:  log,
	}
}

type readingRequest struct {
	Temperature *decimal.Decimal `json:"temperature" validate:"required"`
	RecordedAt  *time.Time       `json:"recorded_at,omitempty"`
}

type webhookRequest struct {
	LocationID  string           `json:"location_id" validate:"required,uuid"`
	Temperature *decimal.Decimal `json:"temperature" validate:"required"`
	RecordedAt  *time.Time       `json:"recorded_at,omitempty"`
}

// Log records a reading for the location in the path
func (h *TemperatureHandler) Log(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "id")

	var req readingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	h.record(w, r, service.LogTemperatureInput{
		LocationID:  locationID,
		Temperature: *req.Temperature,
		RecordedAt:  req.RecordedAt,
	})
}

// Webhook records a reading pushed by a sensor gateway
func (h *TemperatureHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	h.record(w, r, service.LogTemperatureInput{
		LocationID:  req.LocationID,
		Temperature: *req.Temperature,
		RecordedAt:  req.RecordedAt,
	})
}

func (h *TemperatureHandler) record(w http.ResponseWriter, r *http.Request, in service.LogTemperatureInput) {
	reading, err := h.service.LogTemperature(r.Context(), in)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, reading)
}

// History lists a location's readings, newest first
func (h *TemperatureHandler) History(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "id")

	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	logs, err := h.service.ListTemperatureLogs(r.Context(), locationID, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, logs, &httputil.Meta{Limit: limit, Total: len(logs)})
}
