package cart

import "github.com/shopspring/decimal"

// Currency is the storefront's only currency.
const Currency = "LKR"

// Summary is the order summary shown next to the cart.
type Summary struct {
	TotalItems  int             `json:"total_items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

// DeliveryFeeFor charges the flat fee only when there is something to deliver.
func DeliveryFeeFor(subtotal, flatFee decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	return flatFee
}

// Summarize prices the cart with the flat delivery fee.
func Summarize(c *Cart, flatFee decimal.Decimal) Summary {
	fee := DeliveryFeeFor(c.TotalAmount, flatFee)
	return Summary{
		TotalItems:  c.TotalItems,
		Subtotal:    c.TotalAmount,
		DeliveryFee: fee,
		Total:       c.TotalAmount.Add(fee),
		Currency:    Currency,
	}
}
