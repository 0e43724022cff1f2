package og

import (
	"errors"

	"main/internal/schema"
)

var (
	ErrDuplicateOrder = errors.New("order already exists")
	ErrUnknownOrder   = errors.New("order not found")
)

// Order holds the tracker's view of a working order.
type Order struct {
	ID         uint64
	Instrument schema.Instrument
	Strategy   schema.Strategy
	Side       schema.Side
	Price      schema.Price
	Volume     schema.Volume // remaining lots
	Lifespan   schema.Lifespan
}

// Registry maps working order ids to their strategy ownership. Ids are
// assigned monotonically and never reused; retirement is idempotent.
type Registry struct {
	orders map[uint64]*Order
	nextID uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{orders: make(map[uint64]*Order)}
}

// NextID returns the next unused order identifier, starting from 1.
func (r *Registry) NextID() uint64 {
	r.nextID++
	return r.nextID
}

// Add registers a working order.
func (r *Registry) Add(order Order) error {
	if order.ID == 0 {
		return ErrUnknownOrder
	}
	if _, ok := r.orders[order.ID]; ok {
		return ErrDuplicateOrder
	}
	o := order
	r.orders[order.ID] = &o
	return nil
}

// Get returns the tracked order, if any.
func (r *Registry) Get(id uint64) (*Order, bool) {
	o, ok := r.orders[id]
	return o, ok
}

// SetRemaining updates the remaining volume of a tracked order.
func (r *Registry) SetRemaining(id uint64, volume schema.Volume) bool {
	o, ok := r.orders[id]
	if !ok {
		return false
	}
	o.Volume = volume
	return true
}

// Retire removes an order from tracking. Retiring an unknown id is a
// no-op so duplicate terminal statuses are absorbed safely.
func (r *Registry) Retire(id uint64) (Order, bool) {
	o, ok := r.orders[id]
	if !ok {
		return Order{}, false
	}
	delete(r.orders, id)
	return *o, true
}

// RestingAt reports whether any non-hedge order is working at the exact
// price. Used to avoid firing a duplicate arbitrage order within one
// sequence window.
func (r *Registry) RestingAt(price schema.Price) bool {
	for _, o := range r.orders {
		if !o.Strategy.IsHedge() && o.Price == price {
			return true
		}
	}
	return false
}

// Len returns the number of tracked orders.
func (r *Registry) Len() int {
	return len(r.orders)
}
