package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/engine"
	"github.com/frostvault/frostvault-backend/pkg/errors"
)

// OrderResult is an order with its requested items and the picks serving them
type OrderResult struct {
	Order *domain.Order       `json:"order"`
	Items []*domain.OrderItem `json:"items"`
	Picks []*domain.Pick      `json:"picks"`
}

func validateItems(items []engine.ItemRequest) error {
	details := map[string]string{}
	if len(items) == 0 {
		details["items"] = "at least one item is required"
	}
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			details[fmt.Sprintf("items[%d].product_id", i)] = "this field is required"
		}
		if item.Quantity <= 0 {
			details[fmt.Sprintf("items[%d].quantity", i)] = "must be greater than 0"
		}
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// CreateOrder records an order and depletes stock for it first-expired-first-out.
//
// The order is all or nothing. If any item cannot be covered the unit of work
// is rolled back, nothing about the order survives, and an order.rejected
// event carries the unmet demand.
func (s *WarehouseService) CreateOrder(ctx context.Context, items []engine.ItemRequest) (*OrderResult, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	var (
		result     *OrderResult
		shortfalls []engine.Shortfall
	)
	err := s.store.Transact(ctx, func(ctx context.Context, tx domain.Tx) error {
		order := &domain.Order{Status: domain.OrderPending}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		recorded := make([]*domain.OrderItem, 0, len(items))
		for i, item := range items {
			if _, err := tx.GetProduct(ctx, item.ProductID); err != nil {
				if errors.Is(err, errors.ErrNotFound) {
					return errors.Validation(map[string]string{
						fmt.Sprintf("items[%d].product_id", i): "product does not exist",
					})
				}
				return err
			}
			oi := &domain.OrderItem{OrderID: order.ID, ProductID: item.ProductID, Quantity: item.Quantity}
			if err := tx.InsertOrderItem(ctx, oi); err != nil {
				return err
			}
			recorded = append(recorded, oi)
		}

		// Lock in a fixed product order so two orders sharing products
		// cannot wait on each other's batches.
		productIDs := make([]string, 0, len(items))
		seen := make(map[string]bool, len(items))
		for _, item := range items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
		sort.Strings(productIDs)

		candidates := make(map[string][]*domain.Batch, len(productIDs))
		for _, productID := range productIDs {
			batches, err := tx.LockAvailableBatches(ctx, productID)
			if err != nil {
				return err
			}
			candidates[productID] = batches
		}

		plan := engine.PlanDepletion(items, candidates)
		if !plan.Fulfilled() {
			shortfalls = plan.Shortfalls
			missing := make(map[string]string, len(plan.Shortfalls))
			for _, sf := range plan.Shortfalls {
				missing[sf.ProductID] = strconv.Itoa(sf.Missing)
			}
			return errors.InsufficientStock(missing)
		}

		led := newLedger(tx)
		picks := make([]*domain.Pick, 0, len(plan.Picks))
		for _, planned := range plan.Picks {
			pick := &domain.Pick{
				OrderID:        order.ID,
				BatchID:        planned.BatchID,
				ProductID:      planned.ProductID,
				QuantityPicked: planned.Quantity,
				Status:         domain.PickPending,
			}
			if err := tx.InsertPick(ctx, pick); err != nil {
				return err
			}

			ok, err := tx.DecrementBatchQuantity(ctx, planned.BatchID, planned.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return errors.ConcurrencyConflict(fmt.Sprintf("batch %s changed while the order was being filled", planned.BatchID))
			}

			if err := led.adjust(ctx, planned.LocationID, -planned.Quantity); err != nil {
				return err
			}
			picks = append(picks, pick)
		}

		result = &OrderResult{Order: order, Items: recorded, Picks: picks}
		return nil
	})
	if err != nil {
		if len(shortfalls) > 0 {
			s.logger.WithOperation("create_order").Info().
				Int("shortfalls", len(shortfalls)).
				Msg("order rejected for insufficient stock")
			s.publisher.PublishOrderRejected(ctx, shortfalls)
		}
		return nil, err
	}

	s.logger.WithOperation("create_order").Info().
		Str("order_id", result.Order.ID).
		Int("picks", len(result.Picks)).
		Msg("order fulfilled")
	s.publisher.PublishOrderFulfilled(ctx, result.Order, result.Picks)

	return result, nil
}

// GetOrder returns an order with its items and picks
func (s *WarehouseService) GetOrder(ctx context.Context, id string) (*OrderResult, error) {
	var result *OrderResult
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		items, err := tx.ListOrderItems(ctx, id)
		if err != nil {
			return err
		}
		picks, err := tx.ListPicksByOrder(ctx, id)
		if err != nil {
			return err
		}
		result = &OrderResult{Order: order, Items: items, Picks: picks}
		return nil
	})
	return result, err
}

// SetOrderStatus moves an order along its lifecycle. Cancelling also cancels
// the order's picks that are still pending. Stock is not returned.
func (s *WarehouseService) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, errors.InvalidStatus("order", "", string(status))
	}

	var (
		order     *domain.Order
		from      domain.OrderStatus
		cancelled int64
	)
	err := s.store.Transact(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		order, err = tx.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		from = order.Status
		if !from.CanTransitionTo(status) {
			return errors.InvalidStatus("order", string(from), string(status))
		}

		if status == domain.OrderCancelled {
			cancelled, err = tx.CancelPendingPicks(ctx, id)
			if err != nil {
				return err
			}
		}
		if err := tx.SetOrderStatus(ctx, id, status); err != nil {
			return err
		}
		order.Status = status
		order.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishOrderStatusChanged(ctx, id, from, status, cancelled)
	return order, nil
}

// SetPickStatus moves a pick along its lifecycle. Picks of a dispatched or
// cancelled order are frozen.
func (s *WarehouseService) SetPickStatus(ctx context.Context, id string, status domain.PickStatus) (*domain.Pick, error) {
	if !status.Valid() {
		return nil, errors.InvalidStatus("pick", "", string(status))
	}

	var pick *domain.Pick
	err := s.store.Transact(ctx, func(ctx context.Context, tx domain.Tx) error {
		stale, err := tx.GetPick(ctx, id)
		if err != nil {
			return err
		}
		order, err := tx.LockOrder(ctx, stale.OrderID)
		if err != nil {
			return err
		}
		pick, err = tx.LockPick(ctx, id)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return errors.InvalidStatus("pick", string(pick.Status), string(status)).
				WithDetails(map[string]string{"order_status": string(order.Status)})
		}
		if !pick.Status.CanTransitionTo(status) {
			return errors.InvalidStatus("pick", string(pick.Status), string(status))
		}
		if err := tx.SetPickStatus(ctx, id, status); err != nil {
			return err
		}
		pick.Status = status
		pick.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pick, nil
}

// RecordDispatch logs who shipped an order and marks it dispatched.
// A zero date means now.
func (s *WarehouseService) RecordDispatch(ctx context.Context, orderID, dispatchedBy string, date time.Time) (*domain.Dispatch, error) {
	if strings.TrimSpace(dispatchedBy) == "" {
		return nil, errors.Validation(map[string]string{"dispatched_by": "this field is required"})
	}
	if date.IsZero() {
		date = s.now()
	}

	dispatch := &domain.Dispatch{
		OrderID:      orderID,
		DispatchedBy: strings.TrimSpace(dispatchedBy),
		DispatchDate: date.UTC(),
	}
	var from domain.OrderStatus
	err := s.store.Transact(ctx, func(ctx context.Context, tx domain.Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if !from.CanTransitionTo(domain.OrderDispatched) {
			return errors.InvalidStatus("order", string(from), string(domain.OrderDispatched))
		}
		if err := tx.InsertDispatch(ctx, dispatch); err != nil {
			return err
		}
		return tx.SetOrderStatus(ctx, orderID, domain.OrderDispatched)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("order_id", orderID).Str("dispatched_by", dispatch.DispatchedBy).Msg("order dispatched")
	s.publisher.PublishOrderStatusChanged(ctx, orderID, from, domain.OrderDispatched, 0)
	return dispatch, nil
}
