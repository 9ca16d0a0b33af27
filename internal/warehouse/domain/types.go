// Package domain holds the warehouse entities and the unit-of-work contract
// that the allocation and fulfillment logic runs against.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StorageCategory is both a product's storage requirement and a location's type
type StorageCategory string

const (
	CategoryAmbient     StorageCategory = "ambient"
	CategoryColdStorage StorageCategory = "cold_storage"
)

// Valid reports whether c is a known category
func (c StorageCategory) Valid() bool {
	return c == CategoryAmbient || c == CategoryColdStorage
}

// BatchStatus is the lifecycle state of a batch
type BatchStatus string

const (
	BatchAvailable  BatchStatus = "available"
	BatchPicked     BatchStatus = "picked"
	BatchDispatched BatchStatus = "dispatched"
	BatchExpired    BatchStatus = "expired"
	BatchDamaged    BatchStatus = "damaged"
)

// Valid reports whether s is a known batch status
func (s BatchStatus) Valid() bool {
	switch s {
	case BatchAvailable, BatchPicked, BatchDispatched, BatchExpired, BatchDamaged:
		return true
	}
	return false
}

// Product is a stock-keeping unit with a fixed storage category
type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Category    StorageCategory `db:"category" json:"category"`
	Description *string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// StorageLocation is a physical slot identified by zone, rack and slot.
// CurrentOccupancy is derived from the batches assigned to it.
type StorageLocation struct {
	ID                string              `db:"id" json:"id"`
	Zone              string              `db:"zone" json:"zone"`
	Rack              string              `db:"rack" json:"rack"`
	Slot              string              `db:"slot" json:"slot"`
	LocationType      StorageCategory     `db:"location_type" json:"location_type"`
	Capacity          int                 `db:"capacity" json:"capacity"`
	CurrentOccupancy  int                 `db:"current_occupancy" json:"current_occupancy"`
	MinTemp           decimal.NullDecimal `db:"min_temp" json:"min_temp"`
	MaxTemp           decimal.NullDecimal `db:"max_temp" json:"max_temp"`
	LatestTemperature decimal.NullDecimal `db:"latest_temperature" json:"latest_temperature"`
	LastTempUpdate    *time.Time          `db:"last_temp_update" json:"last_temp_update,omitempty"`
	CreatedAt         time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updated_at"`
}

// FreeCapacity returns the units the location can still take
func (l *StorageLocation) FreeCapacity() int {
	return l.Capacity - l.CurrentOccupancy
}

// InRange reports whether t lies within the location's inclusive bounds.
// A location without bounds accepts nothing.
func (l *StorageLocation) InRange(t decimal.Decimal) bool {
	if !l.MinTemp.Valid || !l.MaxTemp.Valid {
		return false
	}
	return t.GreaterThanOrEqual(l.MinTemp.Decimal) && t.LessThanOrEqual(l.MaxTemp.Decimal)
}

// Batch is a homogeneous quantity of one product at one location
type Batch struct {
	ID                 string      `db:"id" json:"id"`
	ProductID          string      `db:"product_id" json:"product_id"`
	BatchNumber        string      `db:"batch_number" json:"batch_number"`
	ExpiryDate         time.Time   `db:"expiry_date" json:"expiry_date"`
	Quantity           int         `db:"quantity" json:"quantity"`
	Barcode            string      `db:"barcode" json:"barcode"`
	AssignedLocationID *string     `db:"assigned_location_id" json:"assigned_location_id,omitempty"`
	Status             BatchStatus `db:"status" json:"status"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updated_at"`
}

// TemperatureLog is an append-only reading for a cold storage location
type TemperatureLog struct {
	ID          string          `db:"id" json:"id"`
	LocationID  string          `db:"location_id" json:"location_id"`
	Temperature decimal.Decimal `db:"temperature" json:"temperature"`
	RecordedAt  time.Time       `db:"recorded_at" json:"recorded_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Day truncates t to its UTC calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
