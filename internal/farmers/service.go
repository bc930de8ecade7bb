package farmers

import (
	"context"
	"strings"

	product "github.com/angelmondragon/farmfresh-backend/internal/products"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
)

// ProductLister is the slice of the catalog the directory needs.
type ProductLister interface {
	FarmerProducts(ctx context.Context, farmerID string) ([]product.Product, error)
}

// Service exposes the farmer directory.
type Service interface {
	List(ctx context.Context, filters ListFilters) ([]Farmer, error)
	Get(ctx context.Context, id string) (Farmer, error)
	Products(ctx context.Context, farmerID string) ([]product.Product, error)
}

type service struct {
	repo     *Repository
	products ProductLister
}

// NewService wires the directory to the product catalog.
func NewService(repo *Repository, products ProductLister) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer repo is required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product lister is required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) List(_ context.Context, filters ListFilters) ([]Farmer, error) {
	location := strings.ToLower(strings.TrimSpace(filters.Location))
	specialty := strings.TrimSpace(filters.Specialty)

	out := []Farmer{}
	for _, f := range s.repo.All() {
		if location != "" && !strings.Contains(strings.ToLower(f.Location), location) {
			continue
		}
		if specialty != "" && !hasFold(f.Specialties, specialty) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *service) Get(_ context.Context, id string) (Farmer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Farmer{}, pkgerrors.New(pkgerrors.CodeValidation, "farmer id is required")
	}
	f, ok := s.repo.FindByID(id)
	if !ok {
		return Farmer{}, pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found")
	}
	return f, nil
}

func (s *service) Products(ctx context.Context, farmerID string) ([]product.Product, error) {
	if _, err := s.Get(ctx, farmerID); err != nil {
		return nil, err
	}
	return s.products.FarmerProducts(ctx, strings.TrimSpace(farmerID))
}

func hasFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
