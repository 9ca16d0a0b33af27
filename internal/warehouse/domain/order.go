package domain

import "time"

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderCompleted  OrderStatus = "completed"
	OrderDispatched OrderStatus = "dispatched"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderCompleted, OrderDispatched, OrderCancelled},
	OrderCompleted: {OrderDispatched, OrderCancelled},
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderDispatched, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed
func (s OrderStatus) Terminal() bool {
	return s == OrderDispatched || s == OrderCancelled
}

// CanTransitionTo reports whether the order may move from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PickStatus is the lifecycle state of a pick
type PickStatus string

const (
	PickPending    PickStatus = "pending_pick"
	PickPicked     PickStatus = "picked"
	PickPacked     PickStatus = "packed"
	PickDispatched PickStatus = "dispatched"
	PickCancelled  PickStatus = "cancelled"
)

var pickTransitions = map[PickStatus][]PickStatus{
	PickPending: {PickPicked, PickCancelled},
	PickPicked:  {PickPacked, PickCancelled},
	PickPacked:  {PickDispatched, PickCancelled},
}

// Valid reports whether s is a known pick status
func (s PickStatus) Valid() bool {
	switch s {
	case PickPending, PickPicked, PickPacked, PickDispatched, PickCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the pick may move from s to next
func (s PickStatus) CanTransitionTo(next PickStatus) bool {
	for _, allowed := range pickTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order groups the items a customer asked for and the picks that serve them
type Order struct {
	ID        string      `db:"id" json:"id"`
	Status    OrderStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// OrderItem records the requested quantity of one product
type OrderItem struct {
	ID        string    `db:"id" json:"id"`
	OrderID   string    `db:"order_id" json:"order_id"`
	ProductID string    `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Pick records the quantity of one batch committed to one order
type Pick struct {
	ID             string     `db:"id" json:"id"`
	OrderID        string     `db:"order_id" json:"order_id"`
	BatchID        string     `db:"batch_id" json:"batch_id"`
	ProductID      string     `db:"product_id" json:"product_id"`
	QuantityPicked int        `db:"quantity_picked" json:"quantity_picked"`
	Status         PickStatus `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Dispatch records an order leaving the warehouse
type Dispatch struct {
	ID           string    `db:"id" json:"id"`
	OrderID      string    `db:"order_id" json:"order_id"`
	DispatchedBy string    `db:"dispatched_by" json:"dispatched_by"`
	DispatchDate time.Time `db:"dispatch_date" json:"dispatch_date"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
