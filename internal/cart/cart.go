package cart

import (
	"sync"

	"lastbite/internal/model"
)

// Cart holds the ordered line items of a single user session. Mutations are
// serialised by an internal mutex so the same at-most-one-writer guarantee
// the single-threaded clients relied on holds in a multi-threaded server.
//
// Invariants:
//   - every line item has quantity >= 1
//   - at most one line item per distinct offer id
//   - insertion order is first-added-first and survives increments
type Cart struct {
	mu    sync.Mutex
	items []model.LineItem

	// onChange, when set, receives a copy of the items after every mutation.
	// It is the persistence hook the store layers underneath the cart
	// contract; the in-memory state remains the source of truth. The hook
	// runs after the mutex is released so a slow snapshot write never
	// blocks cart reads.
	onChange func(items []model.LineItem)
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// restore seeds the cart with previously persisted items. Only used by the
// store before the cart is handed out.
func restore(items []model.LineItem, onChange func([]model.LineItem)) *Cart {
	c := &Cart{onChange: onChange}
	c.items = append(c.items, items...)
	return c
}

// Add puts one unit of the offer into the cart. If a line item for the same
// offer id already exists its quantity is incremented; otherwise a new line
// item with quantity 1 is appended. The offer is copied and its discounted
// price converted to minor units at this point, so later backend changes to
// the offer never affect the cart.
func (c *Cart) Add(offer model.Offer) {
	c.mu.Lock()
	incremented := false
	for i := range c.items {
		if c.items[i].Offer.ID == offer.ID {
			c.items[i].Quantity++
			incremented = true
			break
		}
	}
	if !incremented {
		c.items = append(c.items, model.LineItem{
			Offer:      offer,
			Quantity:   1,
			PriceMinor: model.ToMinorUnits(offer.DiscountedPrice),
		})
	}
	snapshot := c.copyLocked()
	c.mu.Unlock()

	c.notify(snapshot)
}

// Remove deletes the line item for the given offer id. Removing an absent
// offer is a no-op, not an error.
func (c *Cart) Remove(offerID string) {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].Offer.ID == offerID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			snapshot := c.copyLocked()
			c.mu.Unlock()

			c.notify(snapshot)
			return
		}
	}
	c.mu.Unlock()
}

// UpdateQuantity sets the quantity of the line item for the given offer id.
// A quantity of zero or below removes the item; an absent offer id is a
// no-op.
func (c *Cart) UpdateQuantity(offerID string, quantity int) {
	if quantity <= 0 {
		c.Remove(offerID)
		return
	}
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].Offer.ID == offerID {
			c.items[i].Quantity = quantity
			snapshot := c.copyLocked()
			c.mu.Unlock()

			c.notify(snapshot)
			return
		}
	}
	c.mu.Unlock()
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	c.notify(nil)
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []model.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

// ItemCount returns the sum of quantities across all line items, not the
// number of distinct line items. Zero for an empty cart.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for i := range c.items {
		count += c.items[i].Quantity
	}
	return count
}

// TotalMinor returns the cart total in integer minor currency units, summing
// discounted price times quantity per line item. Zero for an empty cart.
func (c *Cart) TotalMinor() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for i := range c.items {
		total += c.items[i].PriceMinor * int64(c.items[i].Quantity)
	}
	return total
}

// Response builds the cart read model for API responses.
func (c *Cart) Response() model.CartResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.copyLocked()
	count := 0
	var total int64
	for i := range items {
		count += items[i].Quantity
		total += items[i].PriceMinor * int64(items[i].Quantity)
	}
	return model.CartResponse{
		Items:      items,
		ItemCount:  count,
		TotalMinor: total,
		Total:      model.FromMinorUnits(total),
	}
}

func (c *Cart) copyLocked() []model.LineItem {
	items := make([]model.LineItem, len(c.items))
	copy(items, c.items)
	return items
}

// notify hands the post-mutation snapshot to the persistence hook, outside
// the mutex. Concurrent mutations may deliver snapshots out of order; the
// snapshot is a recovery aid, the in-memory cart stays authoritative.
func (c *Cart) notify(items []model.LineItem) {
	if c.onChange != nil {
		c.onChange(items)
	}
}
