package pos

import (
	"errors"

	"dukan-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrInsufficientStock is returned when adding a product would exceed
	// the stock known at the time the catalog was read. It is advisory:
	// the commit re-checks against current stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOutOfStock is returned when adding a product whose known stock is zero
	ErrOutOfStock = errors.New("product is out of stock")
)

// Item is one cart line: a product snapshot plus the desired quantity.
// Quantity is always >= 1; dropping it to zero removes the line.
type Item struct {
	Product  domain.Product
	Quantity int
}

// Cart holds a single cashier's in-progress purchase. It is a plain
// value holder with no persistence; state is discarded after a
// successful commit. Not safe for concurrent use; one cart belongs to
// one session.
type Cart struct {
	items []Item
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// Add puts one unit of the product in the cart. If the product is
// already present the quantity grows by 1, but only while it stays
// within the product's last-known stock. A product with zero known
// stock cannot be added at all.
func (c *Cart) Add(product domain.Product) error {
	for i := range c.items {
		if c.items[i].Product.ID == product.ID {
			if c.items[i].Quantity >= product.Stock {
				return ErrInsufficientStock
			}
			c.items[i].Quantity++
			return nil
		}
	}

	if product.Stock < 1 {
		return ErrOutOfStock
	}
	c.items = append(c.items, Item{Product: product, Quantity: 1})
	return nil
}

// SetQuantity sets the desired quantity for a product already in the
// cart. A quantity of zero or less removes the line. No upper clamp is
// applied here: stock may have changed since the snapshot, so the
// commit is the authoritative guard.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Remove drops the line for the given product, if present
func (c *Cart) Remove(productID uuid.UUID) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Items returns the cart lines in insertion order
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Total recomputes the cart total from the snapshot sale prices
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.items {
		total += float64(item.Quantity) * item.Product.SalePrice
	}
	return total
}

// Len returns the number of distinct lines in the cart
func (c *Cart) Len() int {
	return len(c.items)
}

// Clear empties the cart after a successful commit
func (c *Cart) Clear() {
	c.items = nil
}

// Lines converts the cart into the line items submitted for commit.
// Only product identity and quantity travel to the server; prices are
// re-resolved there.
func (c *Cart) Lines() []domain.SaleLine {
	lines := make([]domain.SaleLine, 0, len(c.items))
	for _, item := range c.items {
		lines = append(lines, domain.SaleLine{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
