package service_test

import (
	"context"
	"testing"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/engine"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyBarcode_UnknownIsReadOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loc := f.ambient(t, 100)
	productID := f.product(t, domain.CategoryAmbient)
	f.batch(t, productID, "LOT-V0", date(2025, 6, 1), 10)
	before, err := f.svc.ListBatches(ctx)
	require.NoError(t, err)
	f.events.Reset()

	result, err := f.svc.VerifyBarcode(ctx, "NOPE")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{engine.MsgBarcodeNotFound}, result.Messages)
	assert.Nil(t, result.Batch)

	after, err := f.svc.ListBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 10, f.occupancy(t, loc))
	f.events.AssertNoEventsPublished(t)
}

func TestVerifyBarcode_RequiresActivePendingPick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ambient(t, 100)
	productID := f.product(t, domain.CategoryAmbient)
	batch := f.batch(t, productID, "LOT-V1", date(2025, 6, 1), 10)

	result, err := f.svc.VerifyBarcode(ctx, "LOT-V1")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{engine.MsgNoPendingPick}, result.Messages)

	order, err := f.svc.CreateOrder(ctx, []engine.ItemRequest{{ProductID: productID, Quantity: 2}})
	require.NoError(t, err)

	result, err = f.svc.VerifyBarcode(ctx, "LOT-V1")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, []string{engine.MsgVerified}, result.Messages)
	require.NotNil(t, result.Batch)
	assert.Equal(t, batch.ID, result.Batch.ID)
	require.Len(t, result.PendingPicks, 1)
	assert.Equal(t, order.Picks[0].ID, result.PendingPicks[0].ID)

	_, err = f.svc.SetOrderStatus(ctx, order.Order.ID, domain.OrderCompleted)
	require.NoError(t, err)

	result, err = f.svc.VerifyBarcode(ctx, "LOT-V1")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
}

func TestVerifyBarcode_ExpiringSoonIsWarning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ambient(t, 100)
	productID := f.product(t, domain.CategoryAmbient)
	f.batch(t, productID, "LOT-V2", date(2025, 1, 30), 10)
	_, err := f.svc.CreateOrder(ctx, []engine.ItemRequest{{ProductID: productID, Quantity: 1}})
	require.NoError(t, err)

	result, err := f.svc.VerifyBarcode(ctx, "LOT-V2")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, []string{"Batch expires within 30 days.", engine.MsgVerified}, result.Messages)
}

func TestVerifyBarcode_EmptyBarcode(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.VerifyBarcode(context.Background(), " ")
	assert.ErrorIs(t, err, errors.ErrValidation)
}
