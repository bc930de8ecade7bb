package wishlist

import (
	"time"

	product "github.com/angelmondragon/farmfresh-backend/internal/products"
)

// Entry is one stored favourite.
type Entry struct {
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// WishlistItemDTO wraps the product included in a wishlist row.
type WishlistItemDTO struct {
	Product product.Product `json:"product"`
	AddedAt time.Time       `json:"added_at"`
}

// WishlistPageDTO returns a page of the wishlist in insertion order.
type WishlistPageDTO struct {
	Items      []WishlistItemDTO `json:"items"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

// ToggleResult reports membership after a toggle.
type ToggleResult struct {
	ProductID  string `json:"product_id"`
	Wishlisted bool   `json:"wishlisted"`
}
