package engine_test

import (
	"testing"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/engine"
	"github.com/stretchr/testify/assert"
)

func TestVerifyBarcode(t *testing.T) {
	pending := []*domain.Pick{{ID: "pick-1", BatchID: "b", Status: domain.PickPending}}

	t.Run("unknown barcode", func(t *testing.T) {
		got := engine.VerifyBarcode(nil, nil, refNow, 30)
		assert.Equal(t, engine.BarcodeVerification{IsValid: false, Messages: []string{"Barcode not found."}}, got)
	})

	t.Run("valid", func(t *testing.T) {
		b := batch("b", "p1", date(2025, 6, 1), 10)
		got := engine.VerifyBarcode(b, pending, refNow, 30)
		assert.True(t, got.IsValid)
		assert.Equal(t, []string{engine.MsgVerified}, got.Messages)
		assert.Same(t, b, got.Batch)
		assert.Len(t, got.PendingPicks, 1)
	})

	t.Run("expiring soon only warns", func(t *testing.T) {
		b := batch("b", "p1", date(2025, 1, 30), 10)
		got := engine.VerifyBarcode(b, pending, refNow, 30)
		assert.True(t, got.IsValid)
		assert.Equal(t, []string{"Batch expires within 30 days.", engine.MsgVerified}, got.Messages)
	})

	t.Run("stock and date fine but no pending pick", func(t *testing.T) {
		b := batch("b", "p1", date(2025, 6, 1), 10)
		got := engine.VerifyBarcode(b, nil, refNow, 30)
		assert.False(t, got.IsValid)
		assert.Equal(t, []string{engine.MsgNoPendingPick}, got.Messages)
	})

	t.Run("expired and empty", func(t *testing.T) {
		b := batch("b", "p1", date(2025, 1, 1), 0)
		got := engine.VerifyBarcode(b, pending, refNow, 30)
		assert.False(t, got.IsValid)
		assert.Equal(t, []string{engine.MsgOutOfStock, engine.MsgExpired}, got.Messages)
	})

	t.Run("not available", func(t *testing.T) {
		b := batch("b", "p1", date(2025, 6, 1), 10)
		b.Status = domain.BatchDamaged
		got := engine.VerifyBarcode(b, pending, refNow, 30)
		assert.False(t, got.IsValid)
		assert.Equal(t, []string{"Batch status is damaged."}, got.Messages)
	})
}
