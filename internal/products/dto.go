package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// FarmerRef is the denormalised farmer summary carried on every product.
type FarmerRef struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	FarmName string  `json:"farm_name" yaml:"farm_name"`
	Location string  `json:"location" yaml:"location"`
	Rating   float64 `json:"rating" yaml:"rating"`
}

// Product is a catalog listing. Carts and orders keep their own copy.
type Product struct {
	ID           string          `json:"id" yaml:"id"`
	Name         string          `json:"name" yaml:"name"`
	Description  string          `json:"description" yaml:"description"`
	Price        decimal.Decimal `json:"price" yaml:"price"`
	Unit         string          `json:"unit" yaml:"unit"`
	Category     string          `json:"category" yaml:"category"`
	Farmer       FarmerRef       `json:"farmer" yaml:"farmer"`
	Images       []string        `json:"images" yaml:"images"`
	Stock        int             `json:"stock" yaml:"stock"`
	InStock      bool            `json:"in_stock" yaml:"in_stock"`
	IsOrganic    bool            `json:"is_organic" yaml:"is_organic"`
	HarvestDate  string          `json:"harvest_date,omitempty" yaml:"harvest_date"`
	ExpiryDate   string          `json:"expiry_date,omitempty" yaml:"expiry_date"`
	Tags         []string        `json:"tags" yaml:"tags"`
	Rating       float64         `json:"rating" yaml:"rating"`
	ReviewCount  int             `json:"review_count" yaml:"review_count"`
	Season       string          `json:"season,omitempty" yaml:"season"`
	Availability string          `json:"availability,omitempty" yaml:"availability"`
	CreatedAt    time.Time       `json:"created_at" yaml:"created_at"`
}

// Available reports whether the product can be added to a cart.
func (p Product) Available() bool {
	return p.InStock && p.Stock > 0
}

// Image returns the primary image reference, if any.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Clone returns a deep copy so callers can keep a snapshot.
func (p Product) Clone() Product {
	out := p
	out.Images = append([]string(nil), p.Images...)
	out.Tags = append([]string(nil), p.Tags...)
	return out
}

// CategoryDTO summarises one category for the browse sidebar.
type CategoryDTO struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SeasonalDTO is a compact listing for the seasonal carousel.
type SeasonalDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Season       string          `json:"season"`
	Availability string          `json:"availability"`
}

// ListResult is one page of products plus totals across all pages.
type ListResult struct {
	Products      []Product `json:"products"`
	TotalProducts int       `json:"total_products"`
	TotalPages    int       `json:"total_pages"`
	Page          int       `json:"page"`
	Limit         int       `json:"limit"`
}
