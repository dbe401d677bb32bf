package cart

import (
	"github.com/AntonStoeckl/storefront-orders/storefront/catalog"
)

// Line is one cart line. UnitPrice is frozen when the line is created and never recomputed.
type Line struct {
	ProductID int64   `json:"produit_id"`
	Name      string  `json:"nom"`
	Color     string  `json:"couleur"`
	Size      *string `json:"taille,omitempty"`
	Quantity  int     `json:"quantite"`
	UnitPrice int64   `json:"prix_unitaire"`
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

func (l Line) matches(productID int64, color string, size *string) bool {
	return l.ProductID == productID && l.Color == color && sizeKey(l.Size) == sizeKey(size)
}

// A missing size and an empty size are the same key.
func sizeKey(size *string) string {
	if size == nil {
		return ""
	}

	return *size
}

// Cart is an ordered collection of lines, in insertion order.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{lines: make([]Line, 0)}
}

// FromLines rebuilds a cart from persisted lines; lines with a non-positive quantity are dropped
// and lines with the same key are merged, keeping the first frozen price.
func FromLines(lines []Line) *Cart {
	c := New()

	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}

		if i := c.indexOf(l.ProductID, l.Color, l.Size); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}

		c.lines = append(c.lines, l)
	}

	return c
}

// Add puts up to quantity units of product into the line keyed by product, color, and size.
//
// The line never exceeds the product's available stock: the added amount is clamped to
// stock minus the current line quantity. Add returns true only if the full quantity was added.
// When nothing can be added the cart is unchanged. A new line freezes product.EffectivePrice().
func (c *Cart) Add(product catalog.Product, color string, quantity int, size *string) bool {
	if quantity <= 0 {
		return false
	}

	i := c.indexOf(product.ID, color, size)

	current := 0
	if i >= 0 {
		current = c.lines[i].Quantity
	}

	allowedToAdd := max(0, product.AvailableStock()-current)
	if allowedToAdd == 0 {
		return false
	}

	added := min(quantity, allowedToAdd)

	if i >= 0 {
		c.lines[i].Quantity += added
	} else {
		c.lines = append(c.lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			Color:     color,
			Size:      copySize(size),
			Quantity:  added,
			UnitPrice: product.EffectivePrice(),
		})
	}

	return added == quantity
}

// Remove deletes the line; a missing line is not an error.
func (c *Cart) Remove(productID int64, color string, size *string) {
	if i := c.indexOf(productID, color, size); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// SetQuantity overwrites the quantity of an existing line, or removes it when quantity <= 0.
//
// Unlike Add it does not check stock: callers must not pass more than the stock they display.
func (c *Cart) SetQuantity(productID int64, color string, quantity int, size *string) {
	if quantity <= 0 {
		c.Remove(productID, color, size)
		return
	}

	if i := c.indexOf(productID, color, size); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

func (c *Cart) Clear() {
	c.lines = c.lines[:0]
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// TotalItems is the sum of all line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}

	return total
}

// TotalPrice is the sum of frozen unit price × quantity over all lines.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}

	return total
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	result := make([]Line, len(c.lines))
	for i, l := range c.lines {
		l.Size = copySize(l.Size)
		result[i] = l
	}

	return result
}

// Quantity returns the current quantity of a line, 0 if it does not exist.
func (c *Cart) Quantity(productID int64, color string, size *string) int {
	if i := c.indexOf(productID, color, size); i >= 0 {
		return c.lines[i].Quantity
	}

	return 0
}

func (c *Cart) indexOf(productID int64, color string, size *string) int {
	for i, l := range c.lines {
		if l.matches(productID, color, size) {
			return i
		}
	}

	return -1
}

func copySize(size *string) *string {
	if size == nil {
		return nil
	}

	v := *size

	return &v
}
