package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/errors"
)

// ledger is the only code that changes a location's occupancy. Every path
// that adds, resizes or removes stock at a location goes through it inside
// the same unit of work as the batch write.
type ledger struct {
	tx domain.Tx
}

func newLedger(tx domain.Tx) ledger {
	return ledger{tx: tx}
}

// tryReserve claims qty units at the location if they are still free
func (l ledger) tryReserve(ctx context.Context, locationID string, qty int) (bool, error) {
	return l.tx.AdjustOccupancy(ctx, locationID, qty)
}

// adjust applies delta to the batch's location. Batches without a location are skipped.
func (l ledger) adjust(ctx context.Context, locationID *string, delta int) error {
	if locationID == nil || delta == 0 {
		return nil
	}

	ok, err := l.tx.AdjustOccupancy(ctx, *locationID, delta)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if delta > 0 {
		return errors.CapacityExceeded(*locationID, delta)
	}
	return errors.Wrap(
		fmt.Errorf("releasing %d units would make location %s negative", -delta, *locationID),
		"OCCUPANCY_DRIFT", "occupancy ledger out of step with batches", http.StatusInternalServerError,
	)
}
