package engine_test

import (
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/shopspring/decimal"
)

var refNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func ambient(id string, capacity, occupancy int) *domain.StorageLocation {
	return &domain.StorageLocation{
		ID:               id,
		Zone:             "A",
		Rack:             "1",
		Slot:             id,
		LocationType:     domain.CategoryAmbient,
		Capacity:         capacity,
		CurrentOccupancy: occupancy,
	}
}

func cold(id string, capacity, occupancy int, reading *float64) *domain.StorageLocation {
	loc := &domain.StorageLocation{
		ID:               id,
		Zone:             "C",
		Rack:             "1",
		Slot:             id,
		LocationType:     domain.CategoryColdStorage,
		Capacity:         capacity,
		CurrentOccupancy: occupancy,
		MinTemp:          decimal.NewNullDecimal(decimal.NewFromInt(2)),
		MaxTemp:          decimal.NewNullDecimal(decimal.NewFromInt(8)),
	}
	if reading != nil {
		loc.LatestTemperature = decimal.NewNullDecimal(decimal.NewFromFloat(*reading))
		updated := refNow.Add(-10 * time.Minute)
		loc.LastTempUpdate = &updated
	}
	return loc
}

func temp(v float64) *float64 { return &v }

func batch(id, productID string, expiry time.Time, qty int) *domain.Batch {
	loc := "loc-" + id
	return &domain.Batch{
		ID:                 id,
		ProductID:          productID,
		BatchNumber:        "BN-" + id,
		Barcode:            "BC-" + id,
		ExpiryDate:         expiry,
		Quantity:           qty,
		AssignedLocationID: &loc,
		Status:             domain.BatchAvailable,
		CreatedAt:          refNow,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
