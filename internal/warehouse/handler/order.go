package handler

import (
	"net/http"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/engine"
	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/frostvault/frostvault-backend/pkg/httputil"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// OrderHandler handles order, pick and dispatch endpoints
type OrderHandler struct {
	service *service.WarehouseService
	logger  *logger.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(svc *service.WarehouseService, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  log,
	}
}

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type createOrderRequest struct {
	Items []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type dispatchRequest struct {
	DispatchedBy string `json:"dispatched_by,omitempty" validate:"omitempty,max=255"`
	DispatchDate string `json:"dispatch_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Create places an order and allocates its picks first-expired-first-out
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	items := make([]engine.ItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = engine.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	result, err := h.service.CreateOrder(r.Context(), items)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// Get gets an order with its items and picks
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// UpdateStatus moves an order to a new status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	order, err := h.service.SetOrderStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, order)
}

// Dispatch records the dispatch of an order. dispatched_by defaults to the
// calling operator.
func (h *OrderHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dispatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	dispatchedBy := req.DispatchedBy
	if dispatchedBy == "" {
		dispatchedBy = httputil.GetOperatorID(r.Context())
	}
	if dispatchedBy == "" {
		httputil.Error(w, errors.Validation(map[string]string{"dispatched_by": "this field is required"}))
		return
	}

	var date time.Time
	if req.DispatchDate != "" {
		date, _ = time.Parse(DateLayout, req.DispatchDate)
	}

	dispatch, err := h.service.RecordDispatch(r.Context(), id, dispatchedBy, date)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, dispatch)
}

// UpdatePickStatus moves a pick along the pick list workflow
func (h *OrderHandler) UpdatePickStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	pick, err := h.service.SetPickStatus(r.Context(), id, domain.PickStatus(req.Status))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, pick)
}
