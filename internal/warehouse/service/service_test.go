package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/events"
	"github.com/frostvault/frostvault-backend/internal/warehouse/memstore"
	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/frostvault/frostvault-backend/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *service.WarehouseService
	store  *memstore.Store
	events *testutil.MockPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	store.SetNow(func() time.Time { return refNow })
	pub := testutil.NewMockPublisher()
	log := logger.Nop()

	svc := service.NewWarehouseService(store, events.NewWithPublisher(pub, log), nil, service.DefaultSettings(), log)
	svc.SetClock(func() time.Time { return refNow })

	return &fixture{svc: svc, store: store, events: pub}
}

var slotSeq int

func (f *fixture) product(t *testing.T, category domain.StorageCategory) string {
	t.Helper()
	slotSeq++
	p, err := f.svc.CreateProduct(context.Background(), service.CreateProductInput{
		Name:     fmt.Sprintf("product-%d", slotSeq),
		Category: category,
	})
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) ambient(t *testing.T, capacity int) string {
	t.Helper()
	slotSeq++
	loc, err := f.svc.CreateLocation(context.Background(), service.CreateLocationInput{
		Zone:         "A",
		Rack:         "R1",
		Slot:         fmt.Sprintf("S%d", slotSeq),
		LocationType: domain.CategoryAmbient,
		Capacity:     capacity,
	})
	require.NoError(t, err)
	return loc.ID
}

func (f *fixture) cold(t *testing.T, capacity int) string {
	t.Helper()
	slotSeq++
	minTemp, maxTemp := decimal.NewFromInt(2), decimal.NewFromInt(8)
	loc, err := f.svc.CreateLocation(context.Background(), service.CreateLocationInput{
		Zone:         "C",
		Rack:         "R1",
		Slot:         fmt.Sprintf("S%d", slotSeq),
		LocationType: domain.CategoryColdStorage,
		Capacity:     capacity,
		MinTemp:      &minTemp,
		MaxTemp:      &maxTemp,
	})
	require.NoError(t, err)
	return loc.ID
}

func (f *fixture) batch(t *testing.T, productID, number string, expiry time.Time, qty int) *domain.Batch {
	t.Helper()
	intake, err := f.svc.CreateBatch(context.Background(), service.CreateBatchInput{
		ProductID:   productID,
		BatchNumber: number,
		ExpiryDate:  expiry,
		Quantity:    qty,
	})
	require.NoError(t, err)
	return intake.Batch
}

func (f *fixture) occupancy(t *testing.T, locationID string) int {
	t.Helper()
	loc, err := f.svc.GetLocation(context.Background(), locationID)
	require.NoError(t, err)
	return loc.CurrentOccupancy
}

// assertLedger checks that every location's occupancy equals its batch total
func (f *fixture) assertLedger(t *testing.T) {
	t.Helper()
	drift, err := f.svc.AuditOccupancy(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
