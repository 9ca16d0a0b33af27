package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Warehouse events
	EventBatchAllocated     = "warehouse.batch.allocated"
	EventBatchDeleted       = "warehouse.batch.deleted"
	EventOrderFulfilled     = "warehouse.order.fulfilled"
	EventOrderRejected      = "warehouse.order.rejected"
	EventOrderStatusChanged = "warehouse.order.status_changed"
	EventTemperatureLogged  = "warehouse.temperature.logged"

	// Sensor events, consumed
	EventSensorReading = "sensor.temperature.reading"
)

// Exchange names
const (
	ExchangeWarehouseEvents = "warehouse.events"
	ExchangeSensorEvents    = "sensor.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// BatchAllocatedEvent is published when intake places a batch in a location
type BatchAllocatedEvent struct {
	BatchID     string    `json:"batch_id"`
	ProductID   string    `json:"product_id"`
	BatchNumber string    `json:"batch_number"`
	LocationID  string    `json:"location_id"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
}

// BatchDeletedEvent is published when a batch and its picks are removed
type BatchDeletedEvent struct {
	BatchID       string  `json:"batch_id"`
	LocationID    *string `json:"location_id,omitempty"`
	ReleasedUnits int     `json:"released_units"`
	PicksRemoved  int64   `json:"picks_removed"`
}

// PickLine is one batch quantity committed to an order
type PickLine struct {
	PickID    string `json:"pick_id"`
	BatchID   string `json:"batch_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderFulfilledEvent is published when an order's stock has been committed
type OrderFulfilledEvent struct {
	OrderID string     `json:"order_id"`
	Picks   []PickLine `json:"picks"`
}

// ShortfallLine is the unmet part of one requested item
type ShortfallLine struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Missing   int    `json:"missing"`
}

// OrderRejectedEvent records demand that could not be met. The order itself
// was rolled back, so this is the only trace of the request.
type OrderRejectedEvent struct {
	Shortfalls []ShortfallLine `json:"shortfalls"`
}

// OrderStatusChangedEvent is published on every order status transition
type OrderStatusChangedEvent struct {
	OrderID        string `json:"order_id"`
	From           string `json:"from"`
	To             string `json:"to"`
	PicksCancelled int64  `json:"picks_cancelled,omitempty"`
}

// TemperatureLoggedEvent is published for every accepted reading
type TemperatureLoggedEvent struct {
	LocationID  string    `json:"location_id"`
	Temperature string    `json:"temperature"`
	RecordedAt  time.Time `json:"recorded_at"`
	InRange     bool      `json:"in_range"`
}

// SensorReadingEvent is a reading pushed by the sensor gateway
type SensorReadingEvent struct {
	LocationID  string     `json:"location_id"`
	Temperature string     `json:"temperature"`
	RecordedAt  *time.Time `json:"recorded_at,omitempty"`
}
