package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/shopspring/decimal"
)

// FixtureFactory builds warehouse rows with unique names and slots
type FixtureFactory struct {
	mu  sync.Mutex
	seq int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{}
}

func (f *FixtureFactory) nextSeq() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return f.seq
}

// Product returns an unsaved product of the given category
func (f *FixtureFactory) Product(category domain.StorageCategory) *domain.Product {
	return &domain.Product{
		Name:     fmt.Sprintf("Product %d", f.nextSeq()),
		Category: category,
	}
}

// AmbientLocation returns an unsaved ambient location in its own slot
func (f *FixtureFactory) AmbientLocation(capacity int) *domain.StorageLocation {
	seq := f.nextSeq()
	return &domain.StorageLocation{
		Zone:         "A",
		Rack:         fmt.Sprintf("R%d", seq),
		Slot:         fmt.Sprintf("S%d", seq),
		LocationType: domain.CategoryAmbient,
		Capacity:     capacity,
	}
}

// ColdLocation returns an unsaved cold storage location with inclusive bounds
func (f *FixtureFactory) ColdLocation(capacity int, minTemp, maxTemp float64) *domain.StorageLocation {
	seq := f.nextSeq()
	return &domain.StorageLocation{
		Zone:         "C",
		Rack:         fmt.Sprintf("R%d", seq),
		Slot:         fmt.Sprintf("S%d", seq),
		LocationType: domain.CategoryColdStorage,
		Capacity:     capacity,
		MinTemp:      decimal.NewNullDecimal(decimal.NewFromFloat(minTemp)),
		MaxTemp:      decimal.NewNullDecimal(decimal.NewFromFloat(maxTemp)),
	}
}

// Batch returns an unsaved available batch. The barcode matches the batch number.
func (f *FixtureFactory) Batch(productID string, locationID *string, expiry time.Time, quantity int) *domain.Batch {
	number := fmt.Sprintf("LOT-%05d", f.nextSeq())
	return &domain.Batch{
		ProductID:          productID,
		BatchNumber:        number,
		Barcode:            number,
		ExpiryDate:         domain.Day(expiry),
		Quantity:           quantity,
		AssignedLocationID: locationID,
		Status:             domain.BatchAvailable,
	}
}
