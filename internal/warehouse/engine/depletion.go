package engine

import (
	"sort"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
)

// ItemRequest is one requested product line of an order
type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlannedPick is a quantity to take from one batch
type PlannedPick struct {
	BatchID    string  `json:"batch_id"`
	ProductID  string  `json:"product_id"`
	LocationID *string `json:"location_id,omitempty"`
	Quantity   int     `json:"quantity"`
}

// Shortfall is the unmet part of one item
type Shortfall struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Missing   int    `json:"missing"`
}

// DepletionPlan is the outcome of planning an order against current stock
type DepletionPlan struct {
	Picks      []PlannedPick `json:"picks"`
	Shortfalls []Shortfall   `json:"shortfalls,omitempty"`
}

// Fulfilled reports whether every item was fully covered
func (p DepletionPlan) Fulfilled() bool {
	return len(p.Shortfalls) == 0
}

// SortFEFO orders batches by expiry date, then creation time, then ID
func SortFEFO(batches []*domain.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// PlanDepletion greedily covers each item from the soonest-expiring available
// batches of its product. candidates maps product ID to that product's batches;
// the input is not modified.
//
// Items are processed in order and share the remaining batch quantities, so a
// product requested twice never draws the same units twice. Picks against the
// same batch are merged, keeping the order in which batches were first used.
// An item that cannot be covered is reported in Shortfalls; callers must treat
// any shortfall as failure of the whole order.
func PlanDepletion(items []ItemRequest, candidates map[string][]*domain.Batch) DepletionPlan {
	remaining := make(map[string]int)
	ordered := make(map[string][]*domain.Batch, len(candidates))
	for productID, batches := range candidates {
		usable := make([]*domain.Batch, 0, len(batches))
		for _, b := range batches {
			if b.ProductID != productID || b.Status != domain.BatchAvailable || b.Quantity <= 0 {
				continue
			}
			usable = append(usable, b)
			remaining[b.ID] = b.Quantity
		}
		SortFEFO(usable)
		ordered[productID] = usable
	}

	var plan DepletionPlan
	pickIndex := make(map[string]int)

	for _, item := range items {
		need := item.Quantity
		for _, b := range ordered[item.ProductID] {
			if need == 0 {
				break
			}
			take := min(need, remaining[b.ID])
			if take == 0 {
				continue
			}
			remaining[b.ID] -= take
			need -= take

			if idx, ok := pickIndex[b.ID]; ok {
				plan.Picks[idx].Quantity += take
				continue
			}
			pickIndex[b.ID] = len(plan.Picks)
			plan.Picks = append(plan.Picks, PlannedPick{
				BatchID:    b.ID,
				ProductID:  b.ProductID,
				LocationID: b.AssignedLocationID,
				Quantity:   take,
			})
		}
		if need > 0 {
			plan.Shortfalls = append(plan.Shortfalls, Shortfall{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Missing:   need,
			})
		}
	}

	return plan
}
