package service_test

import (
	"context"
	"testing"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/engine"
	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/frostvault/frostvault-backend/pkg/messaging"
	"github.com/frostvault/frostvault-backend/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBatch_AllocatesMostFreeAmbient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	small := f.ambient(t, 50)
	large := f.ambient(t, 100)
	productID := f.product(t, domain.CategoryAmbient)

	intake, err := f.svc.CreateBatch(ctx, service.CreateBatchInput{
		ProductID:   productID,
		BatchNumber: "LOT-1",
		ExpiryDate:  date(2025, 6, 1),
		Quantity:    30,
	})
	require.NoError(t, err)

	assert.Equal(t, large, intake.AssignedLocationID)
	assert.Equal(t, "LOT-1", intake.Batch.Barcode)
	assert.Equal(t, domain.BatchAvailable, intake.Batch.Status)
	assert.Equal(t, 30, f.occupancy(t, large))
	assert.Equal(t, 0, f.occupancy(t, small))
	f.assertLedger(t)
	f.events.AssertEventPublished(t, messaging.EventBatchAllocated)
}

func TestCreateBatch_ColdStorageSkipsOutOfRangeLocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inRange := f.cold(t, 50)
	tooWarm := f.cold(t, 100)
	_, err := f.svc.LogTemperature(ctx, service.LogTemperatureInput{LocationID: inRange, Temperature: decimal.NewFromFloat(4.5)})
	require.NoError(t, err)
	_, err = f.svc.LogTemperature(ctx, service.LogTemperatureInput{LocationID: tooWarm, Temperature: decimal.NewFromInt(12)})
	require.NoError(t, err)

	productID := f.product(t, domain.CategoryColdStorage)
	batch := f.batch(t, productID, "COLD-1", date(2025, 3, 1), 20)

	require.NotNil(t, batch.AssignedLocationID)
	assert.Equal(t, inRange, *batch.AssignedLocationID)
	assert.Equal(t, 0, f.occupancy(t, tooWarm))
	f.assertLedger(t)
}

func TestCreateBatch_ColdStorageNeverUsesAmbient(t *testing.T) {
	f := newFixture(t)

	f.ambient(t, 500)
	productID := f.product(t, domain.CategoryColdStorage)

	_, err := f.svc.CreateBatch(context.Background(), service.CreateBatchInput{
		ProductID:   productID,
		BatchNumber: "COLD-2",
		ExpiryDate:  date(2025, 3, 1),
		Quantity:    5,
	})
	assert.ErrorIs(t, err, errors.ErrNoSuitableLocation)

	batches, err := f.svc.ListBatches(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestCreateBatch_NoLocationWithEnoughSpace(t *testing.T) {
	f := newFixture(t)

	loc := f.ambient(t, 10)
	productID := f.product(t, domain.CategoryAmbient)
	f.batch(t, productID, "LOT-A", date(2025, 6, 1), 8)

	_, err := f.svc.CreateBatch(context.Background(), service.CreateBatchInput{
		ProductID:   productID,
		BatchNumber: "LOT-B",
		ExpiryDate:  date(2025, 6, 1),
		Quantity:    3,
	})

	assert.ErrorIs(t, err, errors.ErrNoSuitableLocation)
	assert.Equal(t, 8, f.occupancy(t, loc))
	f.assertLedger(t)
}

func TestCreateBatch_DuplicateRollsBackReservation(t *testing.T) {
	f := newFixture(t)

	loc := f.ambient(t, 100)
	productID := f.product(t, domain.CategoryAmbient)
	f.batch(t, productID, "LOT-DUP", date(2025, 6, 1), 10)

	_, err := f.svc.CreateBatch(context.Background(), service.CreateBatchInput{
		ProductID:   productID,
		BatchNumber: "LOT-DUP",
		ExpiryDate:  date(2025, 7, 1),
		Quantity:    15,
	})

	assert.ErrorIs(t, err, errors.ErrDuplicateKey)
	assert.Equal(t, 10, f.occupancy(t, loc))
	f.assertLedger(t)
}

func TestCreateBatch_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBatch(context.Background(), service.CreateBatchInput{
		Barcode: testutil.PtrString("  "),
	})

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Details, "product_id")
	assert.Contains(t, appErr.Details, "batch_number")
	assert.Contains(t, appErr.Details, "expiry_date")
	assert.Contains(t, appErr.Details, "quantity")
	assert.Contains(t, appErr.Details, "barcode")
}

func TestCreateBatch_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	f.ambient(t, 100)

	_, err := f.svc.CreateBatch(context.Background(), service.CreateBatchInput{
		ProductID:   "missing",
		BatchNumber: "LOT-X",
		ExpiryDate:  date(2025, 6, 1),
		Quantity:    1,
	})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestUpdateBatch_QuantityMovesOccupancy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loc := f.ambient(t, 20)
	productID := f.product(t, domain.CategoryAmbient)
	batch := f.batch(t, productID, "LOT-U", date(2025, 6, 1), 10)

	updated, err := f.svc.UpdateBatch(ctx, batch.ID, service.UpdateBatchInput{Quantity: testutil.PtrInt(15)})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Quantity)
	assert.Equal(t, 15, f.occupancy(t, loc))

	_, err = f.svc.UpdateBatch(ctx, batch.ID, service.UpdateBatchInput{Quantity: testutil.PtrInt(25)})
	assert.ErrorIs(t, err, errors.ErrCapacityExceeded)
	assert.Equal(t, 15, f.occupancy(t, loc))

	updated, err = f.svc.UpdateBatch(ctx, batch.ID, service.UpdateBatchInput{Quantity: testutil.PtrInt(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, f.occupancy(t, loc))
	f.assertLedger(t)
}

func TestUpdateBatch_EditsFieldsWithoutMovingStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loc := f.ambient(t, 20)
	productID := f.product(t, domain.CategoryAmbient)
	batch := f.batch(t, productID, "LOT-E", date(2025, 6, 1), 10)

	damaged := domain.BatchDamaged
	expiry := date(2025, 8, 1)
	updated, err := f.svc.UpdateBatch(ctx, batch.ID, service.UpdateBatchInput{
		Barcode:    testutil.PtrString("SCAN-E"),
		ExpiryDate: &expiry,
		Status:     &damaged,
	})
	require.NoError(t, err)

	assert.Equal(t, "SCAN-E", updated.Barcode)
	assert.Equal(t, expiry, updated.ExpiryDate)
	assert.Equal(t, domain.BatchDamaged, updated.Status)
	assert.Equal(t, productID, updated.ProductID)
	assert.Equal(t, loc, *updated.AssignedLocationID)
	assert.Equal(t, 10, f.occupancy(t, loc))

	bogus := domain.BatchStatus("lost")
	_, err = f.svc.UpdateBatch(ctx, batch.ID, service.UpdateBatchInput{Status: &bogus})
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestDeleteBatch_ReleasesOccupancyAndRemovesPicks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loc := f.ambient(t, 100)
	productID := f.product(t, domain.CategoryAmbient)
	target := f.batch(t, productID, "LOT-D1", date(2025, 2, 1), 16)
	f.batch(t, productID, "LOT-D2", date(2025, 9, 1), 5)

	order, err := f.svc.CreateOrder(ctx, []engine.ItemRequest{{ProductID: productID, Quantity: 4}})
	require.NoError(t, err)
	require.Len(t, order.Picks, 1)
	assert.Equal(t, target.ID, order.Picks[0].BatchID)
	assert.Equal(t, 17, f.occupancy(t, loc))

	require.NoError(t, f.svc.DeleteBatch(ctx, target.ID))

	assert.Equal(t, 5, f.occupancy(t, loc))
	_, err = f.svc.GetBatch(ctx, target.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	after, err := f.svc.GetOrder(ctx, order.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, after.Order.Status)
	assert.Empty(t, after.Picks)
	f.assertLedger(t)

	deleted := f.events.Events(messaging.EventBatchDeleted)
	require.Len(t, deleted, 1)
	payload := deleted[0].Payload.(messaging.BatchDeletedEvent)
	assert.Equal(t, 12, payload.ReleasedUnits)
	assert.Equal(t, int64(1), payload.PicksRemoved)
}

func TestDeleteBatch_NotFound(t *testing.T) {
	f := newFixture(t)
	err := f.svc.DeleteBatch(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	f.events.AssertNoEventsPublished(t)
}

func updateStatus(status domain.BatchStatus) service.UpdateBatchInput {
	return service.UpdateBatchInput{Status: &status}
}
