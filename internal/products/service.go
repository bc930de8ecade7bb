package product

import (
	"context"
	"sort"
	"strings"

	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/pagination"
)

const featuredMinRating = 4.8

// Service exposes catalog browsing.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (ListResult, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	Categories(ctx context.Context) ([]CategoryDTO, error)
	Featured(ctx context.Context) ([]Product, error)
	Seasonal(ctx context.Context) ([]SeasonalDTO, error)
	FarmerProducts(ctx context.Context, farmerID string) ([]Product, error)
}

type service struct {
	repo *Repository
}

// NewService builds a catalog service over the repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(_ context.Context, input ListProductsInput) (ListResult, error) {
	if input.Filters.PriceMin != nil && input.Filters.PriceMax != nil && input.Filters.PriceMin.GreaterThan(*input.Filters.PriceMax) {
		return ListResult{}, pkgerrors.New(pkgerrors.CodeValidation, "price_min must not exceed price_max")
	}

	matched := filterAndSort(s.repo.All(), input.Filters)
	page := input.Pagination.Normalize()

	return ListResult{
		Products:      pagination.Slice(matched, page),
		TotalProducts: len(matched),
		TotalPages:    pagination.TotalPages(len(matched), page.Limit),
		Page:          page.Page,
		Limit:         page.Limit,
	}, nil
}

func (s *service) GetProduct(_ context.Context, id string) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	p, ok := s.repo.FindByID(id)
	if !ok {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, nil
}

// Categories counts products per category, ordered by name.
func (s *service) Categories(_ context.Context) ([]CategoryDTO, error) {
	counts := map[string]int{}
	for _, p := range s.repo.All() {
		counts[p.Category]++
	}
	out := make([]CategoryDTO, 0, len(counts))
	for name, count := range counts {
		out = append(out, CategoryDTO{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *service) Featured(_ context.Context) ([]Product, error) {
	out := []Product{}
	for _, p := range s.repo.All() {
		if p.Rating >= featuredMinRating {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *service) Seasonal(_ context.Context) ([]SeasonalDTO, error) {
	out := []SeasonalDTO{}
	for _, p := range s.repo.All() {
		if p.Season == "" {
			continue
		}
		out = append(out, SeasonalDTO{
			ID:           p.ID,
			Name:         p.Name,
			Price:        p.Price,
			Image:        p.Image(),
			Season:       p.Season,
			Availability: p.Availability,
		})
	}
	return out, nil
}

func (s *service) FarmerProducts(_ context.Context, farmerID string) ([]Product, error) {
	if strings.TrimSpace(farmerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer id is required")
	}
	return filterAndSort(s.repo.All(), ListFilters{FarmerID: farmerID}), nil
}
