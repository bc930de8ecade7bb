package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmfresh-backend/internal/cart"
	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
	"github.com/angelmondragon/farmfresh-backend/pkg/types"
)

// Order is an immutable snapshot of a cart at checkout plus its fulfilment state.
type Order struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	Items             []cart.LineItem   `json:"items"`
	TotalItems        int               `json:"total_items"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	DeliveryFee       decimal.Decimal   `json:"delivery_fee"`
	GrandTotal        decimal.Decimal   `json:"grand_total"`
	Currency          string            `json:"currency"`
	Status            enums.OrderStatus `json:"status"`
	DeliveryAddress   types.Address     `json:"delivery_address"`
	Notes             string            `json:"notes,omitempty"`
	TrackingNumber    string            `json:"tracking_number"`
	StatusHistory     []StatusChange    `json:"status_history"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	EstimatedDelivery time.Time         `json:"estimated_delivery"`
	DeliveredAt       *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`
}

// StatusChange records when an order entered a status.
type StatusChange struct {
	Status enums.OrderStatus `json:"status"`
	At     time.Time         `json:"at"`
}

// CheckoutInput carries everything needed to place an order from a cart profile.
type CheckoutInput struct {
	UserID string
	// ProfileID is the cart profile to convert; empty means the user's own cart.
	ProfileID       string
	DeliveryAddress types.Address
	Notes           string
}

// ListFilters narrows order listings.
type ListFilters struct {
	Status *enums.OrderStatus
}

// OrderList is one page of orders, newest first.
type OrderList struct {
	Orders     []Order `json:"orders"`
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

// TrackingDTO is the customer-facing delivery view of an order.
type TrackingDTO struct {
	OrderID           string            `json:"order_id"`
	TrackingNumber    string            `json:"tracking_number"`
	Status            enums.OrderStatus `json:"status"`
	EstimatedDelivery time.Time         `json:"estimated_delivery"`
	DeliveredAt       *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`
	History           []StatusChange    `json:"history"`
}

func (o Order) clone() Order {
	out := o
	out.Items = make([]cart.LineItem, len(o.Items))
	for i, item := range o.Items {
		item.Product = item.Product.Clone()
		out.Items[i] = item
	}
	out.StatusHistory = append([]StatusChange(nil), o.StatusHistory...)
	if o.DeliveredAt != nil {
		at := *o.DeliveredAt
		out.DeliveredAt = &at
	}
	if o.CancelledAt != nil {
		at := *o.CancelledAt
		out.CancelledAt = &at
	}
	return out
}

func (o Order) tracking() TrackingDTO {
	return TrackingDTO{
		OrderID:           o.ID,
		TrackingNumber:    o.TrackingNumber,
		Status:            o.Status,
		EstimatedDelivery: o.EstimatedDelivery,
		DeliveredAt:       o.DeliveredAt,
		CancelledAt:       o.CancelledAt,
		History:           append([]StatusChange(nil), o.StatusHistory...),
	}
}
