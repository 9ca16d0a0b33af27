package events

import (
	"context"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/engine"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/frostvault/frostvault-backend/pkg/messaging"
)

// WarehouseEventPublisher publishes warehouse events. A nil publisher drops
// every event, so services run without a broker.
type WarehouseEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewWarehouseEventPublisher creates a publisher on the warehouse exchange
func NewWarehouseEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*WarehouseEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeWarehouseEvents, "warehouse-service", log)
	if err != nil {
		return nil, err
	}

	return NewWithPublisher(publisher, log), nil
}

// NewWithPublisher wraps an existing EventPublisher
func NewWithPublisher(publisher messaging.EventPublisher, log *logger.Logger) *WarehouseEventPublisher {
	return &WarehouseEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

func (p *WarehouseEventPublisher) publish(ctx context.Context, eventType string, data interface{}) {
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

// PublishBatchAllocated publishes a batch allocated event
func (p *WarehouseEventPublisher) PublishBatchAllocated(ctx context.Context, batch *domain.Batch) {
	if p == nil || batch.AssignedLocationID == nil {
		return
	}

	p.publish(ctx, messaging.EventBatchAllocated, messaging.BatchAllocatedEvent{
		BatchID:     batch.ID,
		ProductID:   batch.ProductID,
		BatchNumber: batch.BatchNumber,
		LocationID:  *batch.AssignedLocationID,
		Quantity:    batch.Quantity,
		ExpiryDate:  batch.ExpiryDate,
	})
}

// PublishBatchDeleted publishes a batch deleted event
func (p *WarehouseEventPublisher) PublishBatchDeleted(ctx context.Context, batch *domain.Batch, picksRemoved int64) {
	if p == nil {
		return
	}

	p.publish(ctx, messaging.EventBatchDeleted, messaging.BatchDeletedEvent{
		BatchID:       batch.ID,
		LocationID:    batch.AssignedLocationID,
		ReleasedUnits: batch.Quantity,
		PicksRemoved:  picksRemoved,
	})
}

// PublishOrderFulfilled publishes an order fulfilled event
func (p *WarehouseEventPublisher) PublishOrderFulfilled(ctx context.Context, order *domain.Order, picks []*domain.Pick) {
	if p == nil {
		return
	}

	lines := make([]messaging.PickLine, len(picks))
	for i, pick := range picks {
		lines[i] = messaging.PickLine{
			PickID:    pick.ID,
			BatchID:   pick.BatchID,
			ProductID: pick.ProductID,
			Quantity:  pick.QuantityPicked,
		}
	}

	p.publish(ctx, messaging.EventOrderFulfilled, messaging.OrderFulfilledEvent{
		OrderID: order.ID,
		Picks:   lines,
	})
}

// PublishOrderRejected records unmet demand for an order that was rolled back
func (p *WarehouseEventPublisher) PublishOrderRejected(ctx context.Context, shortfalls []engine.Shortfall) {
	if p == nil {
		return
	}

	lines := make([]messaging.ShortfallLine, len(shortfalls))
	for i, s := range shortfalls {
		lines[i] = messaging.ShortfallLine{
			ProductID: s.ProductID,
			Requested: s.Requested,
			Missing:   s.Missing,
		}
	}

	p.publish(ctx, messaging.EventOrderRejected, messaging.OrderRejectedEvent{Shortfalls: lines})
}

// PublishOrderStatusChanged publishes an order status transition
func (p *WarehouseEventPublisher) PublishOrderStatusChanged(ctx context.Context, orderID string, from, to domain.OrderStatus, picksCancelled int64) {
	if p == nil {
		return
	}

	p.publish(ctx, messaging.EventOrderStatusChanged, messaging.OrderStatusChangedEvent{
		OrderID:        orderID,
		From:           string(from),
		To:             string(to),
		PicksCancelled: picksCancelled,
	})
}

// PublishTemperatureLogged publishes a temperature logged event
func (p *WarehouseEventPublisher) PublishTemperatureLogged(ctx context.Context, reading *domain.TemperatureLog, inRange bool) {
	if p == nil {
		return
	}

	p.publish(ctx, messaging.EventTemperatureLogged, messaging.TemperatureLoggedEvent{
		LocationID:  reading.LocationID,
		Temperature: reading.Temperature.String(),
		RecordedAt:  reading.RecordedAt,
		InRange:     inRange,
	})
}
