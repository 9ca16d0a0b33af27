// Package memstore is an in-process domain.Store. Units of work are serialized
// and run against a private copy of the state that replaces the shared state
// only when the unit commits.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type state struct {
	seq       int64
	products  map[string]domain.Product
	locations map[string]domain.StorageLocation
	batches   map[string]domain.Batch
	orders    map[string]domain.Order
	items     map[string]domain.OrderItem
	picks     map[string]domain.Pick
	dispatch  map[string]domain.Dispatch
	tempLogs  map[string]domain.TemperatureLog
	order     map[string]int64 // insertion sequence per row ID
}

func newState() state {
	return state{
		products:  make(map[string]domain.Product),
		locations: make(map[string]domain.StorageLocation),
		batches:   make(map[string]domain.Batch),
		orders:    make(map[string]domain.Order),
		items:     make(map[string]domain.OrderItem),
		picks:     make(map[string]domain.Pick),
		dispatch:  make(map[string]domain.Dispatch),
		tempLogs:  make(map[string]domain.TemperatureLog),
		order:     make(map[string]int64),
	}
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every table. Rows are values and pointer fields are only ever
// replaced, never written through, so a shallow row copy is enough.
func (s state) clone() state {
	return state{
		seq:       s.seq,
		products:  copyMap(s.products),
		locations: copyMap(s.locations),
		batches:   copyMap(s.batches),
		orders:    copyMap(s.orders),
		items:     copyMap(s.items),
		picks:     copyMap(s.picks),
		dispatch:  copyMap(s.dispatch),
		tempLogs:  copyMap(s.tempLogs),
		order:     copyMap(s.order),
	}
}

// Store is a domain.Store held in memory
type Store struct {
	mu    sync.Mutex
	state state
	nowFn func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{state: newState(), nowFn: func() time.Time { return time.Now().UTC() }}
}

// SetNow overrides the clock used for row timestamps
func (s *Store) SetNow(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// Transact runs fn on a private copy of the state and publishes the copy when
// fn succeeds. Units of work never overlap.
func (s *Store) Transact(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	t := &tx{state: s.state.clone(), now: s.nowFn()}
	if err := fn(ctx, t); err != nil {
		return err
	}
	s.state = t.state
	return nil
}

type tx struct {
	state state
	now   time.Time
}

func (t *tx) track(id string) {
	t.state.seq++
	t.state.order[id] = t.state.seq
}

func (t *tx) before(a, b string) bool {
	return t.state.order[a] < t.state.order[b]
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// Products

func (t *tx) InsertProduct(ctx context.Context, p *domain.Product) error {
	for _, existing := range t.state.products {
		if existing.Name == p.Name {
			return errors.Duplicate("a product with this name already exists")
		}
	}
	p.ID = newID(p.ID)
	p.CreatedAt, p.UpdatedAt = t.now, t.now
	t.state.products[p.ID] = *p
	t.track(p.ID)
	return nil
}

func (t *tx) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := t.state.products[id]
	if !ok {
		return nil, errors.NotFound("product")
	}
	return &p, nil
}

func (t *tx) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(t.state.products))
	for _, p := range t.state.products {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Locations

func (t *tx) InsertLocation(ctx context.Context, l *domain.StorageLocation) error {
	for _, existing := range t.state.locations {
		if existing.Zone == l.Zone && existing.Rack == l.Rack && existing.Slot == l.Slot {
			return errors.Duplicate("a location with this zone, rack and slot already exists")
		}
	}
	l.ID = newID(l.ID)
	l.CreatedAt, l.UpdatedAt = t.now, t.now
	t.state.locations[l.ID] = *l
	t.track(l.ID)
	return nil
}

func (t *tx) GetLocation(ctx context.Context, id string) (*domain.StorageLocation, error) {
	l, ok := t.state.locations[id]
	if !ok {
		return nil, errors.NotFound("storage location")
	}
	return &l, nil
}

func (t *tx) ListLocations(ctx context.Context, category domain.StorageCategory) ([]*domain.StorageLocation, error) {
	out := make([]*domain.StorageLocation, 0, len(t.state.locations))
	for _, l := range t.state.locations {
		if category != "" && l.LocationType != category {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Zone != b.Zone {
			return a.Zone < b.Zone
		}
		if a.Rack != b.Rack {
			return a.Rack < b.Rack
		}
		return a.Slot < b.Slot
	})
	return out, nil
}

func (t *tx) FindLocationCandidates(ctx context.Context, category domain.StorageCategory, minFree int) ([]*domain.StorageLocation, error) {
	out := make([]*domain.StorageLocation, 0)
	for _, l := range t.state.locations {
		if l.LocationType != category || l.FreeCapacity() < minFree {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FreeCapacity() != out[j].FreeCapacity() {
			return out[i].FreeCapacity() > out[j].FreeCapacity()
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *tx) AdjustOccupancy(ctx context.Context, locationID string, delta int) (bool, error) {
	l, ok := t.state.locations[locationID]
	if !ok {
		return false, nil
	}
	next := l.CurrentOccupancy + delta
	if next < 0 || next > l.Capacity {
		return false, nil
	}
	l.CurrentOccupancy = next
	l.UpdatedAt = t.now
	t.state.locations[locationID] = l
	return true, nil
}

func (t *tx) UpdateLatestTemperature(ctx context.Context, locationID string, reading decimal.Decimal, at time.Time) (bool, error) {
	l, ok := t.state.locations[locationID]
	if !ok {
		return false, nil
	}
	if l.LastTempUpdate != nil && at.Before(*l.LastTempUpdate) {
		return false, nil
	}
	l.LatestTemperature = decimal.NewNullDecimal(reading)
	l.LastTempUpdate = &at
	l.UpdatedAt = t.now
	t.state.locations[locationID] = l
	return true, nil
}

func (t *tx) InsertTemperatureLog(ctx context.Context, log *domain.TemperatureLog) error {
	if _, ok := t.state.locations[log.LocationID]; !ok {
		return errors.BadRequest("referenced record does not exist")
	}
	log.ID = newID(log.ID)
	log.CreatedAt = t.now
	t.state.tempLogs[log.ID] = *log
	t.track(log.ID)
	return nil
}

func (t *tx) ListTemperatureLogs(ctx context.Context, locationID string, limit int) ([]*domain.TemperatureLog, error) {
	out := make([]*domain.TemperatureLog, 0)
	for _, l := range t.state.tempLogs {
		if l.LocationID != locationID {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return t.before(out[j].ID, out[i].ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Batches

func (t *tx) checkBatchUnique(b *domain.Batch) error {
	for id, existing := range t.state.batches {
		if id == b.ID {
			continue
		}
		if existing.BatchNumber == b.BatchNumber {
			return errors.Duplicate("a batch with this batch number already exists")
		}
		if existing.Barcode == b.Barcode {
			return errors.Duplicate("a batch with this barcode already exists")
		}
	}
	return nil
}

func (t *tx) InsertBatch(ctx context.Context, b *domain.Batch) error {
	if _, ok := t.state.products[b.ProductID]; !ok {
		return errors.BadRequest("referenced record does not exist")
	}
	if b.AssignedLocationID != nil {
		if _, ok := t.state.locations[*b.AssignedLocationID]; !ok {
			return errors.BadRequest("referenced record does not exist")
		}
	}
	b.ID = newID(b.ID)
	if err := t.checkBatchUnique(b); err != nil {
		return err
	}
	b.CreatedAt, b.UpdatedAt = t.now, t.now
	t.state.batches[b.ID] = *b
	t.track(b.ID)
	return nil
}

func (t *tx) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	b, ok := t.state.batches[id]
	if !ok {
		return nil, errors.NotFound("batch")
	}
	return &b, nil
}

// LockBatch is GetBatch; units of work are already exclusive.
func (t *tx) LockBatch(ctx context.Context, id string) (*domain.Batch, error) {
	return t.GetBatch(ctx, id)
}

func (t *tx) GetBatchByBarcode(ctx context.Context, barcode string) (*domain.Batch, error) {
	for _, b := range t.state.batches {
		if b.Barcode == barcode {
			return &b, nil
		}
	}
	return nil, errors.NotFound("batch")
}

func (t *tx) UpdateBatch(ctx context.Context, b *domain.Batch) error {
	existing, ok := t.state.batches[b.ID]
	if !ok {
		return errors.NotFound("batch")
	}
	if err := t.checkBatchUnique(b); err != nil {
		return err
	}
	existing.BatchNumber = b.BatchNumber
	existing.Barcode = b.Barcode
	existing.ExpiryDate = b.ExpiryDate
	existing.Quantity = b.Quantity
	existing.Status = b.Status
	existing.UpdatedAt = t.now
	t.state.batches[b.ID] = existing
	*b = existing
	return nil
}

func (t *tx) DeleteBatch(ctx context.Context, id string) error {
	if _, ok := t.state.batches[id]; !ok {
		return errors.NotFound("batch")
	}
	for _, p := range t.state.picks {
		if p.BatchID == id {
			return errors.BadRequest("batch still has picks")
		}
	}
	delete(t.state.batches, id)
	return nil
}

func (t *tx) LockAvailableBatches(ctx context.Context, productID string) ([]*domain.Batch, error) {
	out := make([]*domain.Batch, 0)
	for _, b := range t.state.batches {
		if b.ProductID != productID || b.Status != domain.BatchAvailable || b.Quantity <= 0 {
			continue
		}
		b := b
		out = append(out, &b)
	}
	t.sortBatches(out)
	return out, nil
}

func (t *tx) DecrementBatchQuantity(ctx context.Context, id string, qty int) (bool, error) {
	b, ok := t.state.batches[id]
	if !ok || b.Quantity < qty {
		return false, nil
	}
	b.Quantity -= qty
	b.UpdatedAt = t.now
	t.state.batches[id] = b
	return true, nil
}

func (t *tx) ListBatches(ctx context.Context) ([]*domain.Batch, error) {
	out := make([]*domain.Batch, 0, len(t.state.batches))
	for _, b := range t.state.batches {
		b := b
		out = append(out, &b)
	}
	t.sortBatches(out)
	return out, nil
}

func (t *tx) SumQuantityByLocation(ctx context.Context) (map[string]int, error) {
	sums := make(map[string]int)
	for _, b := range t.state.batches {
		if b.AssignedLocationID != nil {
			sums[*b.AssignedLocationID] += b.Quantity
		}
	}
	return sums, nil
}

// sortBatches orders FEFO: expiry, then creation time, then insertion order.
func (t *tx) sortBatches(batches []*domain.Batch) {
	sort.Slice(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return t.before(a.ID, b.ID)
	})
}

// Orders

func (t *tx) InsertOrder(ctx context.Context, o *domain.Order) error {
	o.ID = newID(o.ID)
	o.CreatedAt, o.UpdatedAt = t.now, t.now
	t.state.orders[o.ID] = *o
	t.track(o.ID)
	return nil
}

func (t *tx) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, ok := t.state.orders[id]
	if !ok {
		return nil, errors.NotFound("order")
	}
	return &o, nil
}

func (t *tx) LockOrder(ctx context.Context, id string) (*domain.Order, error) {
	return t.GetOrder(ctx, id)
}

func (t *tx) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	o, ok := t.state.orders[id]
	if !ok {
		return errors.NotFound("order")
	}
	o.Status = status
	o.UpdatedAt = t.now
	t.state.orders[id] = o
	return nil
}

func (t *tx) InsertOrderItem(ctx context.Context, item *domain.OrderItem) error {
	if _, ok := t.state.orders[item.OrderID]; !ok {
		return errors.BadRequest("referenced record does not exist")
	}
	if _, ok := t.state.products[item.ProductID]; !ok {
		return errors.BadRequest("referenced record does not exist")
	}
	item.ID = newID(item.ID)
	item.CreatedAt = t.now
	t.state.items[item.ID] = *item
	t.track(item.ID)
	return nil
}

func (t *tx) ListOrderItems(ctx context.Context, orderID string) ([]*domain.OrderItem, error) {
	out := make([]*domain.OrderItem, 0)
	for _, item := range t.state.items {
		if item.OrderID == orderID {
			item := item
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return t.before(out[i].ID, out[j].ID) })
	return out, nil
}

// Picks

func (t *tx) InsertPick(ctx context.Context, p *domain.Pick) error {
	if _, ok := t.state.orders[p.OrderID]; !ok {
		return errors.BadRequest("referenced record does not exist")
	}
	if _, ok := t.state.batches[p.BatchID]; !ok {
		return errors.BadRequest("referenced record does not exist")
	}
	for _, existing := range t.state.picks {
		if existing.OrderID == p.OrderID && existing.BatchID == p.BatchID {
			return errors.Duplicate(fmt.Sprintf("batch %s is already picked for order %s", p.BatchID, p.OrderID))
		}
	}
	p.ID = newID(p.ID)
	p.CreatedAt, p.UpdatedAt = t.now, t.now
	t.state.picks[p.ID] = *p
	t.track(p.ID)
	return nil
}

func (t *tx) GetPick(ctx context.Context, id string) (*domain.Pick, error) {
	p, ok := t.state.picks[id]
	if !ok {
		return nil, errors.NotFound("pick")
	}
	return &p, nil
}

func (t *tx) LockPick(ctx context.Context, id string) (*domain.Pick, error) {
	return t.GetPick(ctx, id)
}

func (t *tx) SetPickStatus(ctx context.Context, id string, status domain.PickStatus) error {
	p, ok := t.state.picks[id]
	if !ok {
		return errors.NotFound("pick")
	}
	p.Status = status
	p.UpdatedAt = t.now
	t.state.picks[id] = p
	return nil
}

func (t *tx) listPicks(match func(domain.Pick) bool) []*domain.Pick {
	out := make([]*domain.Pick, 0)
	for _, p := range t.state.picks {
		if match(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return t.before(out[i].ID, out[j].ID) })
	return out
}

func (t *tx) ListPicksByOrder(ctx context.Context, orderID string) ([]*domain.Pick, error) {
	return t.listPicks(func(p domain.Pick) bool { return p.OrderID == orderID }), nil
}

func (t *tx) DeletePicksByBatch(ctx context.Context, batchID string) (int64, error) {
	var n int64
	for id, p := range t.state.picks {
		if p.BatchID == batchID {
			delete(t.state.picks, id)
			n++
		}
	}
	return n, nil
}

func (t *tx) CancelPendingPicks(ctx context.Context, orderID string) (int64, error) {
	var n int64
	for id, p := range t.state.picks {
		if p.OrderID == orderID && p.Status == domain.PickPending {
			p.Status = domain.PickCancelled
			p.UpdatedAt = t.now
			t.state.picks[id] = p
			n++
		}
	}
	return n, nil
}

func (t *tx) ListActivePendingPicks(ctx context.Context, batchID string) ([]*domain.Pick, error) {
	return t.listPicks(func(p domain.Pick) bool {
		if p.BatchID != batchID || p.Status != domain.PickPending {
			return false
		}
		o, ok := t.state.orders[p.OrderID]
		return ok && o.Status == domain.OrderPending
	}), nil
}

func (t *tx) InsertDispatch(ctx context.Context, d *domain.Dispatch) error {
	if _, ok := t.state.orders[d.OrderID]; !ok {
		return errors.BadRequest("referenced record does not exist")
	}
	d.ID = newID(d.ID)
	d.CreatedAt = t.now
	t.state.dispatch[d.ID] = *d
	t.track(d.ID)
	return nil
}
