package domain

import (
	"fmt"
	"math"
)

// MaxQuantity caps the units of one service in a single order.
const MaxQuantity = 999

// Cart is a budget-constrained service selection for a single new order.
// It is built per request and never shared.
type Cart struct {
	catalog []Service
	index   map[int64]int
	qty     map[int64]int
	budget  float64
	free    bool
}

// CartLine is a selected service with its quantity and line amount.
type CartLine struct {
	ServiceID int64   `json:"service_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Amount    float64 `json:"amount"`
}

// NewCart returns an empty cart over catalog. When free is set the budget
// ceiling no longer limits selection and the total is forced to zero.
func NewCart(catalog []Service, budget float64, free bool) *Cart {
	c := &Cart{
		catalog: catalog,
		index:   make(map[int64]int, len(catalog)),
		qty:     make(map[int64]int, len(catalog)),
		budget:  budget,
		free:    free,
	}
	for i, s := range catalog {
		c.index[s.ID] = i
	}
	return c
}

// Free reports whether the order being composed is free.
func (c *Cart) Free() bool { return c.free }

// CanIncrement reports whether one more unit of serviceID fits.
func (c *Cart) CanIncrement(serviceID int64) bool {
	i, ok := c.index[serviceID]
	if !ok {
		return false
	}
	if c.qty[serviceID] >= MaxQuantity {
		return false
	}
	if c.free {
		return true
	}
	return fits(c.Subtotal()+c.catalog[i].Price, c.budget)
}

// fits compares amounts in whole cents, so 0.1+0.2 fits a budget of 0.3.
func fits(amount, budget float64) bool {
	return math.Round(amount*100) <= math.Round(budget*100)
}

// Increment adds one unit of serviceID.
func (c *Cart) Increment(serviceID int64) error {
	if _, ok := c.index[serviceID]; !ok {
		return fmt.Errorf("service %d: %w", serviceID, ErrUnknownService)
	}
	if c.qty[serviceID] >= MaxQuantity {
		return fmt.Errorf("service %d: %w", serviceID, ErrInvalidQuantity)
	}
	if !c.CanIncrement(serviceID) {
		return ErrBudgetExceeded
	}
	c.qty[serviceID]++
	return nil
}

// Decrement removes one unit of serviceID; a zero quantity stays at zero.
func (c *Cart) Decrement(serviceID int64) error {
	if _, ok := c.index[serviceID]; !ok {
		return fmt.Errorf("service %d: %w", serviceID, ErrUnknownService)
	}
	if c.qty[serviceID] > 0 {
		c.qty[serviceID]--
	}
	return nil
}

// Quantity returns the selected quantity of serviceID.
func (c *Cart) Quantity(serviceID int64) int { return c.qty[serviceID] }

// Apply adds a selection line by line. Prices are never negative, so checking
// a whole line against the budget gives the same answer as incrementing it
// one unit at a time.
func (c *Cart) Apply(items []LineItem) error {
	for _, it := range items {
		if it.Quantity < 0 || it.Quantity > MaxQuantity {
			return fmt.Errorf("service %d: %w", it.ServiceID, ErrInvalidQuantity)
		}
		i, ok := c.index[it.ServiceID]
		if !ok {
			return fmt.Errorf("service %d: %w", it.ServiceID, ErrUnknownService)
		}
		if it.Quantity == 0 {
			continue
		}
		if c.qty[it.ServiceID]+it.Quantity > MaxQuantity {
			return fmt.Errorf("service %d: %w", it.ServiceID, ErrInvalidQuantity)
		}
		if !c.free && !fits(c.Subtotal()+c.catalog[i].Price*float64(it.Quantity), c.budget) {
			return ErrBudgetExceeded
		}
		c.qty[it.ServiceID] += it.Quantity
	}
	return nil
}

// Subtotal is the undiscounted price of the selection.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, s := range c.catalog {
		total += s.Price * float64(c.qty[s.ID])
	}
	return total
}

// Total is the price to display and submit: zero when the order is free.
func (c *Cart) Total() float64 {
	if c.free {
		return 0
	}
	return c.Subtotal()
}

// RemainingBudget is the budget left after Total.
func (c *Cart) RemainingBudget() float64 {
	return c.budget - c.Total()
}

// Units is the total number of selected units.
func (c *Cart) Units() int {
	n := 0
	for _, q := range c.qty {
		n += q
	}
	return n
}

// Lines returns the selected services in catalog order, skipping zero quantities.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.qty))
	for _, s := range c.catalog {
		q := c.qty[s.ID]
		if q == 0 {
			continue
		}
		lines = append(lines, CartLine{
			ServiceID: s.ID,
			Name:      s.Name,
			UnitPrice: s.Price,
			Quantity:  q,
			Amount:    s.Price * float64(q),
		})
	}
	return lines
}

// Items returns the selection as submitted to the backend. The actual
// services and quantities are sent even when the order is free.
func (c *Cart) Items() []LineItem {
	lines := c.Lines()
	items := make([]LineItem, len(lines))
	for i, l := range lines {
		items[i] = LineItem{ServiceID: l.ServiceID, Quantity: l.Quantity}
	}
	return items
}
