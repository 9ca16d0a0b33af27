package service

import (
	"context"
	"strings"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// CreateLocationInput is the data needed to add a storage location.
// Temperature bounds are required for cold storage and forbidden otherwise.
type CreateLocationInput struct {
	Zone         string                 `json:"zone" validate:"required,max=50"`
	Rack         string                 `json:"rack" validate:"required,max=50"`
	Slot         string                 `json:"slot" validate:"required,max=50"`
	LocationType domain.StorageCategory `json:"location_type" validate:"required,oneof=ambient cold_storage"`
	Capacity     int                    `json:"capacity" validate:"required,gt=0"`
	MinTemp      *decimal.Decimal       `json:"min_temp,omitempty"`
	MaxTemp      *decimal.Decimal       `json:"max_temp,omitempty"`
}

func (in CreateLocationInput) validate() error {
	details := map[string]string{}
	if strings.TrimSpace(in.Zone) == "" {
		details["zone"] = "this field is required"
	}
	if strings.TrimSpace(in.Rack) == "" {
		details["rack"] = "this field is required"
	}
	if strings.TrimSpace(in.Slot) == "" {
		details["slot"] = "this field is required"
	}
	if in.Capacity <= 0 {
		details["capacity"] = "must be greater than 0"
	}

	switch in.LocationType {
	case domain.CategoryColdStorage:
		if in.MinTemp == nil {
			details["min_temp"] = "required for cold storage"
		}
		if in.MaxTemp == nil {
			details["max_temp"] = "required for cold storage"
		}
		if in.MinTemp != nil && in.MaxTemp != nil && in.MinTemp.GreaterThan(*in.MaxTemp) {
			details["min_temp"] = "must not exceed max_temp"
		}
	case domain.CategoryAmbient:
		if in.MinTemp != nil || in.MaxTemp != nil {
			details["location_type"] = "temperature bounds are only allowed for cold storage"
		}
	default:
		details["location_type"] = "must be one of: ambient, cold_storage"
	}

	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// CreateLocation adds an empty storage location
func (s *WarehouseService) CreateLocation(ctx context.Context, in CreateLocationInput) (*domain.StorageLocation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	loc := &domain.StorageLocation{
		Zone:         strings.TrimSpace(in.Zone),
		Rack:         strings.TrimSpace(in.Rack),
		Slot:         strings.TrimSpace(in.Slot),
		LocationType: in.LocationType,
		Capacity:     in.Capacity,
	}
	if in.MinTemp != nil {
		loc.MinTemp = decimal.NewNullDecimal(in.MinTemp.Round(2))
	}
	if in.MaxTemp != nil {
		loc.MaxTemp = decimal.NewNullDecimal(in.MaxTemp.Round(2))
	}

	err := s.store.Transact(ctx, func(ctx context.Context, tx domain.Tx) error {
		return tx.InsertLocation(ctx, loc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("location_id", loc.ID).
		Str("location_type", string(loc.LocationType)).
		Int("capacity", loc.Capacity).
		Msg("storage location created")
	return loc, nil
}

// GetLocation gets a storage location by ID
func (s *WarehouseService) GetLocation(ctx context.Context, id string) (*domain.StorageLocation, error) {
	var loc *domain.StorageLocation
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		loc, err = tx.GetLocation(ctx, id)
		return err
	})
	return loc, err
}

// ListLocations lists locations, optionally filtered by type
func (s *WarehouseService) ListLocations(ctx context.Context, category domain.StorageCategory) ([]*domain.StorageLocation, error) {
	if category != "" && !category.Valid() {
		return nil, errors.Validation(map[string]string{"type": "must be one of: ambient, cold_storage"})
	}

	var locs []*domain.StorageLocation
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		locs, err = tx.ListLocations(ctx, category)
		return err
	})
	return locs, err
}
