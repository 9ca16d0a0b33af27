package handler

import (
	"net/http"

	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/httputil"
	"github.com/frostvault/frostvault-backend/pkg/logger"
)

// AlertHandler handles alert and audit endpoints
type AlertHandler struct {
	service *service.WarehouseService
	logger  *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(svc *service.WarehouseService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		service: svc,
		logger:  log,
	}
}

// Expiry lists expired and soon-to-expire stock
func (h *AlertHandler) Expiry(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.ExpiryAlerts(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alerts)
}

// Stock lists low and out-of-stock batches
func (h *AlertHandler) Stock(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.StockAlerts(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alerts)
}

// Temperature lists non-compliant cold storage locations
func (h *AlertHandler) Temperature(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.TemperatureAlerts(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, alerts, &httputil.Meta{Total: len(alerts)})
}

// Occupancy compares recorded location occupancy with the stock on hand
func (h *AlertHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	drift, err := h.service.AuditOccupancy(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if len(drift) > 0 {
		h.logger.Warn().Int("locations", len(drift)).Msg("occupancy audit found drift")
	}
	httputil.JSONWithMeta(w, http.StatusOK, drift, &httputil.Meta{Total: len(drift)})
}
