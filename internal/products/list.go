package product

import (
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/farmfresh-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SortOrder names the supported browse orderings.
type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortNewest    SortOrder = "newest"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortRating    SortOrder = "rating"
	SortPopular   SortOrder = "popular"
)

// ParseSortOrder validates a raw sort query value.
func ParseSortOrder(value string) (SortOrder, error) {
	switch s := SortOrder(strings.ToLower(strings.TrimSpace(value))); s {
	case SortDefault, SortNewest, SortPriceLow, SortPriceHigh, SortRating, SortPopular:
		return s, nil
	default:
		return "", fmt.Errorf("unsupported sort %q", value)
	}
}

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	Category  string
	FarmerID  string
	InStock   bool
	Organic   bool
	PriceMin  *decimal.Decimal
	PriceMax  *decimal.Decimal
	MinRating float64
	Query     string
	Sort      SortOrder
}

// ListProductsInput captures filters plus the requested page.
type ListProductsInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

func (f ListFilters) matches(p Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, strings.TrimSpace(f.Category)) {
		return false
	}
	if f.FarmerID != "" && p.Farmer.ID != f.FarmerID {
		return false
	}
	if f.InStock && !p.Available() {
		return false
	}
	if f.Organic && !p.IsOrganic {
		return false
	}
	if f.PriceMin != nil && p.Price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && p.Price.GreaterThan(*f.PriceMax) {
		return false
	}
	if f.MinRating > 0 && p.Rating < f.MinRating {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" && !matchesQuery(p, q) {
		return false
	}
	return true
}

func matchesQuery(p Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// filterAndSort returns a new slice; the input is never reordered.
func filterAndSort(all []Product, f ListFilters) []Product {
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if f.matches(p) {
			out = append(out, p)
		}
	}

	var less func(a, b Product) bool
	switch f.Sort {
	case SortNewest:
		less = func(a, b Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortPriceLow:
		less = func(a, b Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceHigh:
		less = func(a, b Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	case SortPopular:
		less = func(a, b Product) bool { return a.ReviewCount > b.ReviewCount }
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}
