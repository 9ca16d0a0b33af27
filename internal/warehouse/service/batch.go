package service

import (
	"context"
	"strings"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/engine"
	"github.com/frostvault/frostvault-backend/pkg/errors"
)

// CreateBatchInput is the data needed to receive a batch. Barcode defaults
// to the batch number.
type CreateBatchInput struct {
	ProductID   string
	BatchNumber string
	ExpiryDate  time.Time
	Quantity    int
	Barcode     *string
}

// BatchIntake is the result of receiving a batch
type BatchIntake struct {
	Batch              *domain.Batch `json:"batch"`
	AssignedLocationID string        `json:"assigned_location_id"`
}

// UpdateBatchInput holds the editable batch fields. Nil fields are left alone.
type UpdateBatchInput struct {
	BatchNumber *string
	Barcode     *string
	ExpiryDate  *time.Time
	Quantity    *int
	Status      *domain.BatchStatus
}

func (in CreateBatchInput) validate() error {
	details := map[string]string{}
	if in.ProductID == "" {
		details["product_id"] = "this field is required"
	}
	if strings.TrimSpace(in.BatchNumber) == "" {
		details["batch_number"] = "this field is required"
	}
	if in.ExpiryDate.IsZero() {
		details["expiry_date"] = "this field is required"
	}
	if in.Quantity <= 0 {
		details["quantity"] = "must be greater than 0"
	}
	if in.Barcode != nil && strings.TrimSpace(*in.Barcode) == "" {
		details["barcode"] = "must not be empty"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// CreateBatch receives stock: it picks a location for the product's category,
// reserves the quantity there and records the batch, all in one unit of work.
//
// Eligible locations are tried best first. The reservation is a conditional
// write, so when a concurrent intake has taken the space since the candidates
// were read the next eligible location is tried instead.
func (s *WarehouseService) CreateBatch(ctx context.Context, in CreateBatchInput) (*BatchIntake, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	batch := &domain.Batch{
		ProductID:   in.ProductID,
		BatchNumber: strings.TrimSpace(in.BatchNumber),
		ExpiryDate:  domain.Day(in.ExpiryDate),
		Quantity:    in.Quantity,
		Barcode:     strings.TrimSpace(in.BatchNumber),
		Status:      domain.BatchAvailable,
	}
	if in.Barcode != nil {
		batch.Barcode = strings.TrimSpace(*in.Barcode)
	}

	err := s.store.Transact(ctx, func(ctx context.Context, tx domain.Tx) error {
		product, err := tx.GetProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}

		candidates, err := tx.FindLocationCandidates(ctx, product.Category, in.Quantity)
		if err != nil {
			return err
		}

		led := newLedger(tx)
		for _, loc := range engine.EligibleLocations(candidates, product.Category, in.Quantity, s.settings.Allocation) {
			ok, err := led.tryReserve(ctx, loc.ID, in.Quantity)
			if err != nil {
				return err
			}
			if ok {
				locationID := loc.ID
				batch.AssignedLocationID = &locationID
				break
			}
			s.logger.Debug().Str("location_id", loc.ID).Msg("candidate filled concurrently, trying next")
		}
		if batch.AssignedLocationID == nil {
			return errors.NoSuitableLocation(string(product.Category), in.Quantity)
		}

		return tx.InsertBatch(ctx, batch)
	})
	if err != nil {
		if errors.Is(err, errors.ErrNoSuitableLocation) {
			s.logger.WithOperation("create_batch").Info().
				Str("product_id", in.ProductID).
				Int("quantity", in.Quantity).
				Msg("no suitable location for batch")
		}
		return nil, err
	}

	s.logger.WithOperation("create_batch").Info().
		Str("batch_id", batch.ID).
		Str("location_id", *batch.AssignedLocationID).
		Int("quantity", batch.Quantity).
		Msg("batch allocated")
	s.publisher.PublishBatchAllocated(ctx, batch)

	return &BatchIntake{Batch: batch, AssignedLocationID: *batch.AssignedLocationID}, nil
}

// GetBatch gets a batch by ID
func (s *WarehouseService) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	var batch *domain.Batch
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		batch, err = tx.GetBatch(ctx, id)
		return err
	})
	return batch, err
}

// ListBatches lists all batches in FEFO order
func (s *WarehouseService) ListBatches(ctx context.Context) ([]*domain.Batch, error) {
	var batches []*domain.Batch
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		batches, err = tx.ListBatches(ctx)
		return err
	})
	return batches, err
}

// UpdateBatch edits a batch. A quantity change moves the location's occupancy
// by the same amount and fails with CapacityExceeded if the location cannot
// take an increase. The product and location are never reassigned.
func (s *WarehouseService) UpdateBatch(ctx context.Context, id string, in UpdateBatchInput) (*domain.Batch, error) {
	details := map[string]string{}
	if in.BatchNumber != nil && strings.TrimSpace(*in.BatchNumber) == "" {
		details["batch_number"] = "must not be empty"
	}
	if in.Barcode != nil && strings.TrimSpace(*in.Barcode) == "" {
		details["barcode"] = "must not be empty"
	}
	if in.ExpiryDate != nil && in.ExpiryDate.IsZero() {
		details["expiry_date"] = "must be a valid date"
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		details["quantity"] = "must not be negative"
	}
	if in.Status != nil && !in.Status.Valid() {
		details["status"] = "must be one of: available, picked, dispatched, expired, damaged"
	}
	if len(details) > 0 {
		return nil, errors.Validation(details)
	}

	var updated *domain.Batch
	err := s.store.Transact(ctx, func(ctx context.Context, tx domain.Tx) error {
		batch, err := tx.LockBatch(ctx, id)
		if err != nil {
			return err
		}

		delta := 0
		if in.BatchNumber != nil {
			batch.BatchNumber = strings.TrimSpace(*in.BatchNumber)
		}
		if in.Barcode != nil {
			batch.Barcode = strings.TrimSpace(*in.Barcode)
		}
		if in.ExpiryDate != nil {
			batch.ExpiryDate = domain.Day(*in.ExpiryDate)
		}
		if in.Quantity != nil {
			delta = *in.Quantity - batch.Quantity
			batch.Quantity = *in.Quantity
		}
		if in.Status != nil {
			batch.Status = *in.Status
		}

		if err := newLedger(tx).adjust(ctx, batch.AssignedLocationID, delta); err != nil {
			return err
		}
		if err := tx.UpdateBatch(ctx, batch); err != nil {
			return err
		}
		updated = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteBatch removes a batch together with its picks and releases its
// remaining quantity from the location.
func (s *WarehouseService) DeleteBatch(ctx context.Context, id string) error {
	var (
		removed      *domain.Batch
		picksRemoved int64
	)
	err := s.store.Transact(ctx, func(ctx context.Context, tx domain.Tx) error {
		batch, err := tx.LockBatch(ctx, id)
		if err != nil {
			return err
		}

		picksRemoved, err = tx.DeletePicksByBatch(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteBatch(ctx, id); err != nil {
			return err
		}
		if err := newLedger(tx).adjust(ctx, batch.AssignedLocationID, -batch.Quantity); err != nil {
			return err
		}
		removed = batch
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("batch_id", id).
		Int("released", removed.Quantity).
		Int64("picks_removed", picksRemoved).
		Msg("batch deleted")
	s.publisher.PublishBatchDeleted(ctx, removed, picksRemoved)
	return nil
}

// VerifyBarcode checks a scanned barcode without changing anything
func (s *WarehouseService) VerifyBarcode(ctx context.Context, barcode string) (*engine.BarcodeVerification, error) {
	if strings.TrimSpace(barcode) == "" {
		return nil, errors.Validation(map[string]string{"barcode": "this field is required"})
	}

	var (
		batch *domain.Batch
		picks []*domain.Pick
	)
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		batch, err = tx.GetBatchByBarcode(ctx, barcode)
		if errors.Is(err, errors.ErrNotFound) {
			batch = nil
			return nil
		}
		if err != nil {
			return err
		}
		picks, err = tx.ListActivePendingPicks(ctx, batch.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := engine.VerifyBarcode(batch, picks, s.now(), s.settings.ExpiryWindowDays)
	return &result, nil
}
