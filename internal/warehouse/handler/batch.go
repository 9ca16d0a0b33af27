package handler

import (
	"net/http"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/frostvault/frostvault-backend/pkg/httputil"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// DateLayout is the wire format of expiry and dispatch dates
const DateLayout = "2006-01-02"

// BatchHandler handles batch endpoints
type BatchHandler struct {
	service *service.WarehouseService
	logger  *logger.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(svc *service.WarehouseService, log *logger.Logger) *BatchHandler {
	return &BatchHandler{
		service: svc,
		logger:  log,
	}
}

type createBatchRequest struct {
	ProductID   string  `json:"product_id" validate:"required,uuid"`
	BatchNumber string  `json:"batch_number" validate:"required,max=100"`
	ExpiryDate  string  `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	Barcode     *string `json:"barcode,omitempty" validate:"omitempty,max=100"`
}

type updateBatchRequest struct {
	BatchNumber *string `json:"batch_number,omitempty" validate:"omitempty,min=1,max=100"`
	Barcode     *string `json:"barcode,omitempty" validate:"omitempty,min=1,max=100"`
	ExpiryDate  *string `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Quantity    *int    `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=available picked dispatched expired damaged"`
}

// List lists all batches
func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.ListBatches(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, batches, &httputil.Meta{Total: len(batches)})
}

// Get gets a batch by ID
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batch, err := h.service.GetBatch(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batch)
}

// Create receives a batch and assigns it a storage location
func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	expiry, _ := time.Parse(DateLayout, req.ExpiryDate)
	intake, err := h.service.CreateBatch(r.Context(), service.CreateBatchInput{
		ProductID:   req.ProductID,
		BatchNumber: req.BatchNumber,
		ExpiryDate:  expiry,
		Quantity:    req.Quantity,
		Barcode:     req.Barcode,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, intake)
}

// Update edits a batch
func (h *BatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateBatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	in := service.UpdateBatchInput{
		BatchNumber: req.BatchNumber,
		Barcode:     req.Barcode,
		Quantity:    req.Quantity,
	}
	if req.ExpiryDate != nil {
		expiry, err := time.Parse(DateLayout, *req.ExpiryDate)
		if err != nil {
			httputil.Error(w, errors.Validation(map[string]string{"expiry_date": "must be a date in the format " + DateLayout}))
			return
		}
		in.ExpiryDate = &expiry
	}
	if req.Status != nil {
		status := domain.BatchStatus(*req.Status)
		in.Status = &status
	}

	batch, err := h.service.UpdateBatch(r.Context(), id, in)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batch)
}

// Delete deletes a batch and its picks
func (h *BatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteBatch(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Verify checks a scanned barcode at the pick face
func (h *BatchHandler) Verify(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")

	result, err := h.service.VerifyBarcode(r.Context(), barcode)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}
