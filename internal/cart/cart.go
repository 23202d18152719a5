package cart

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrOutOfStock = errors.New("insufficient stock")
	ErrNotInCart  = errors.New("product not in cart")
)

type Product struct {
	ID          int
	Name        string
	Price       int64
	Stock       int
	Description string
}

type Item struct {
	Product
	Quantity int
}

// Subtotal is Price times Quantity.
func (i Item) Subtotal() int64 { return i.Price * int64(i.Quantity) }

// StockError reports an increment that would exceed a product's stock.
type StockError struct {
	ProductID int
	Name      string
	Stock     int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: only %d in stock", e.Name, e.Stock)
}

func (e *StockError) Is(target error) bool { return target == ErrOutOfStock }

// Line is the persisted form of one cart entry.
type Line struct {
	ProductID int
	Quantity  int
}

// Cart is an ordered, stock-limited list of items. Rejected operations
// leave it unchanged.
type Cart struct {
	mu    sync.Mutex
	items []Item
}

func New() *Cart { return &Cart{} }

func (c *Cart) Add(p Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.find(p.ID); i >= 0 {
		if c.items[i].Quantity+1 > p.Stock {
			return &StockError{ProductID: p.ID, Name: p.Name, Stock: p.Stock}
		}
		c.items[i].Quantity++
		return nil
	}
	if p.Stock < 1 {
		return &StockError{ProductID: p.ID, Name: p.Name, Stock: p.Stock}
	}
	c.items = append(c.items, Item{Product: p, Quantity: 1})
	return nil
}

func (c *Cart) Increase(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.find(id)
	if i < 0 {
		return ErrNotInCart
	}
	it := c.items[i]
	if it.Quantity+1 > it.Stock {
		return &StockError{ProductID: id, Name: it.Name, Stock: it.Stock}
	}
	c.items[i].Quantity++
	return nil
}

// Decrease lowers the quantity by one and drops the line when it reaches 0.
func (c *Cart) Decrease(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.find(id)
	if i < 0 {
		return ErrNotInCart
	}
	c.items[i].Quantity--
	if c.items[i].Quantity <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	return nil
}

func (c *Cart) Remove(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.find(id)
	if i < 0 {
		return ErrNotInCart
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Items returns a copy of the cart in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item(nil), c.items...)
}

func (c *Cart) Quantity(id int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.find(id); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Remaining is the stock of p not yet in the cart.
func (c *Cart) Remaining(p Product) int {
	return max(0, p.Stock-c.Quantity(p.ID))
}

func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, Line{ProductID: it.ID, Quantity: it.Quantity})
	}
	return out
}

// Restore replaces the cart with lines, resolving products from catalog.
// Unknown products are dropped and quantities are clamped to current stock.
func (c *Cart) Restore(lines []Line, catalog []Product) {
	byID := make(map[int]Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	items := make([]Item, 0, len(lines))
	seen := map[int]bool{}
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || seen[p.ID] {
			continue
		}
		qty := min(l.Quantity, p.Stock)
		if qty <= 0 {
			continue
		}
		seen[p.ID] = true
		items = append(items, Item{Product: p, Quantity: qty})
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

func (c *Cart) find(id int) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
