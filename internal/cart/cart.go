// Package cart keeps per-profile shopping carts. A cart is an ordered list of line
// items keyed by product id; totals are always derived from the lines.
package cart

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	product "github.com/angelmondragon/farmfresh-backend/internal/products"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
)

// LineItem is one product snapshot and its quantity.
type LineItem struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
	AddedAt  time.Time       `json:"added_at"`
}

// LineTotal is the snapshot unit price times the quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds the line items in insertion order. TotalItems and TotalAmount are
// recomputed by every mutation and never written directly.
type Cart struct {
	Items       []LineItem      `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Items: []LineItem{}, TotalAmount: decimal.Zero}
}

// FromItems rebuilds a cart from stored lines. Lines without a product id or with a
// non-positive quantity are dropped and repeated product ids are merged.
func FromItems(items []LineItem) *Cart {
	c := New()
	for _, item := range items {
		if strings.TrimSpace(item.Product.ID) == "" || item.Quantity <= 0 {
			continue
		}
		if idx := c.indexOf(item.Product.ID); idx >= 0 {
			c.Items[idx].Quantity += item.Quantity
			continue
		}
		item.Product = item.Product.Clone()
		c.Items = append(c.Items, item)
	}
	c.recompute()
	return c
}

// AddItem adds quantity to the product's line, appending a new line when absent.
func (c *Cart) AddItem(p product.Product, quantity int, now time.Time) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer").
			WithDetails(map[string]any{"quantity": quantity})
	}
	if strings.TrimSpace(p.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if idx := c.indexOf(p.ID); idx >= 0 {
		c.Items[idx].Quantity += quantity
	} else {
		c.Items = append(c.Items, LineItem{Product: p.Clone(), Quantity: quantity, AddedAt: now.UTC()})
	}
	c.recompute()
	return nil
}

// SetQuantity replaces the line's quantity. Zero or less removes the line; an absent
// product is left alone.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	if idx := c.indexOf(productID); idx >= 0 {
		c.Items[idx].Quantity = quantity
	}
	c.recompute()
}

// RemoveItem drops the product's line if present.
func (c *Cart) RemoveItem(productID string) {
	if idx := c.indexOf(productID); idx >= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}
	c.recompute()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.recompute()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Contains reports whether the product has a line.
func (c *Cart) Contains(productID string) bool {
	return c.indexOf(productID) >= 0
}

// Snapshot returns a deep copy of the lines, decoupled from the cart.
func (c *Cart) Snapshot() []LineItem {
	out := make([]LineItem, len(c.Items))
	for i, item := range c.Items {
		item.Product = item.Product.Clone()
		out[i] = item
	}
	return out
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) recompute() {
	c.TotalItems = TotalItems(c.Items)
	c.TotalAmount = TotalAmount(c.Items)
}

// TotalItems sums the quantities.
func TotalItems(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// TotalAmount sums price times quantity over the lines.
func TotalAmount(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
