package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store runs units of work. fn sees an isolated Tx; a nil return commits every
// write made through it, any error rolls all of them back.
type Store interface {
	Transact(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of reads and conditional writes available inside a unit of work.
// Lookups of missing rows return an errors.NotFound AppError.
type Tx interface {
	InsertProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)

	InsertLocation(ctx context.Context, l *StorageLocation) error
	GetLocation(ctx context.Context, id string) (*StorageLocation, error)
	// ListLocations returns every location, or only those of category when it is set.
	ListLocations(ctx context.Context, category StorageCategory) ([]*StorageLocation, error)
	// FindLocationCandidates returns locations of the category with at least
	// minFree units of free capacity, most free first.
	FindLocationCandidates(ctx context.Context, category StorageCategory, minFree int) ([]*StorageLocation, error)
	// AdjustOccupancy applies delta only if the result stays within
	// [0, capacity]. It reports false when the write was refused.
	AdjustOccupancy(ctx context.Context, locationID string, delta int) (bool, error)
	// UpdateLatestTemperature caches the reading unless a newer one is already
	// cached. It reports false when the cached reading was kept.
	UpdateLatestTemperature(ctx context.Context, locationID string, reading decimal.Decimal, at time.Time) (bool, error)
	InsertTemperatureLog(ctx context.Context, log *TemperatureLog) error
	ListTemperatureLogs(ctx context.Context, locationID string, limit int) ([]*TemperatureLog, error)

	InsertBatch(ctx context.Context, b *Batch) error
	GetBatch(ctx context.Context, id string) (*Batch, error)
	// LockBatch reads the batch and holds it until the unit of work ends.
	LockBatch(ctx context.Context, id string) (*Batch, error)
	GetBatchByBarcode(ctx context.Context, barcode string) (*Batch, error)
	UpdateBatch(ctx context.Context, b *Batch) error
	DeleteBatch(ctx context.Context, id string) error
	// LockAvailableBatches locks the product's available batches with stock,
	// in FEFO order.
	LockAvailableBatches(ctx context.Context, productID string) ([]*Batch, error)
	// DecrementBatchQuantity subtracts qty only if the batch still holds it.
	DecrementBatchQuantity(ctx context.Context, id string, qty int) (bool, error)
	ListBatches(ctx context.Context) ([]*Batch, error)
	// SumQuantityByLocation returns the batch quantity total per assigned location.
	SumQuantityByLocation(ctx context.Context) (map[string]int, error)

	InsertOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	LockOrder(ctx context.Context, id string) (*Order, error)
	SetOrderStatus(ctx context.Context, id string, status OrderStatus) error
	InsertOrderItem(ctx context.Context, item *OrderItem) error
	ListOrderItems(ctx context.Context, orderID string) ([]*OrderItem, error)

	InsertPick(ctx context.Context, p *Pick) error
	GetPick(ctx context.Context, id string) (*Pick, error)
	LockPick(ctx context.Context, id string) (*Pick, error)
	SetPickStatus(ctx context.Context, id string, status PickStatus) error
	ListPicksByOrder(ctx context.Context, orderID string) ([]*Pick, error)
	DeletePicksByBatch(ctx context.Context, batchID string) (int64, error)
	CancelPendingPicks(ctx context.Context, orderID string) (int64, error)
	// ListActivePendingPicks returns the batch's pending picks that belong to pending orders.
	ListActivePendingPicks(ctx context.Context, batchID string) ([]*Pick, error)

	InsertDispatch(ctx context.Context, d *Dispatch) error
}
