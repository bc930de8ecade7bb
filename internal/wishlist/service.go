package wishlist

import (
	"context"
	"errors"
	"strings"
	"time"

	product "github.com/angelmondragon/farmfresh-backend/internal/products"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/pagination"
)

type productLoader interface {
	GetProduct(ctx context.Context, id string) (product.Product, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
	Products     productLoader
	Logger       *logger.Logger
}

// Service exposes the per-user favourites set.
type Service interface {
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	Toggle(ctx context.Context, userID, productID string) (ToggleResult, error)
	Contains(ctx context.Context, userID, productID string) (bool, error)
	List(ctx context.Context, userID string) ([]string, error)
	GetWishlist(ctx context.Context, userID string, page pagination.Params) (WishlistPageDTO, error)
}

type service struct {
	repo     *Repository
	products productLoader
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product loader is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     params.WishlistRepo,
		products: params.Products,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Add ensures the product exists and adds it; adding twice is a no-op.
func (s *service) Add(ctx context.Context, userID, productID string) error {
	productID = strings.TrimSpace(productID)
	entries, err := s.load(ctx, userID, productID)
	if err != nil {
		return err
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return err
	}
	entries, changed := AddItem(entries, productID, s.now())
	if !changed {
		return nil
	}
	return s.save(ctx, userID, entries)
}

// Remove drops the entry regardless of prior state.
func (s *service) Remove(ctx context.Context, userID, productID string) error {
	productID = strings.TrimSpace(productID)
	entries, err := s.load(ctx, userID, productID)
	if err != nil {
		return err
	}
	entries, changed := RemoveItem(entries, productID)
	if !changed {
		return nil
	}
	return s.save(ctx, userID, entries)
}

// Toggle flips membership and reports the state after the call.
func (s *service) Toggle(ctx context.Context, userID, productID string) (ToggleResult, error) {
	productID = strings.TrimSpace(productID)
	entries, err := s.load(ctx, userID, productID)
	if err != nil {
		return ToggleResult{}, err
	}

	if next, removed := RemoveItem(entries, productID); removed {
		if err := s.save(ctx, userID, next); err != nil {
			return ToggleResult{}, err
		}
		return ToggleResult{ProductID: productID, Wishlisted: false}, nil
	}

	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return ToggleResult{}, err
	}
	next, _ := AddItem(entries, productID, s.now())
	if err := s.save(ctx, userID, next); err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{ProductID: productID, Wishlisted: true}, nil
}

func (s *service) Contains(ctx context.Context, userID, productID string) (bool, error) {
	productID = strings.TrimSpace(productID)
	entries, err := s.load(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	return indexOf(entries, productID) >= 0, nil
}

func (s *service) List(ctx context.Context, userID string) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	entries, err := s.entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ProductID
	}
	return ids, nil
}

// GetWishlist resolves a page of entries against the catalog. Products that have left
// the catalog are skipped.
func (s *service) GetWishlist(ctx context.Context, userID string, page pagination.Params) (WishlistPageDTO, error) {
	if err := requireUser(userID); err != nil {
		return WishlistPageDTO{}, err
	}
	entries, err := s.entries(ctx, userID)
	if err != nil {
		return WishlistPageDTO{}, err
	}

	items := make([]WishlistItemDTO, 0, len(entries))
	for _, e := range entries {
		p, err := s.products.GetProduct(ctx, e.ProductID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				continue
			}
			return WishlistPageDTO{}, err
		}
		items = append(items, WishlistItemDTO{Product: p, AddedAt: e.AddedAt})
	}

	page = page.Normalize()
	return WishlistPageDTO{
		Items:      pagination.Slice(items, page),
		Total:      len(items),
		TotalPages: pagination.TotalPages(len(items), page.Limit),
		Page:       page.Page,
		Limit:      page.Limit,
	}, nil
}

func (s *service) load(ctx context.Context, userID, productID string) ([]Entry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.entries(ctx, userID)
}

func (s *service) entries(ctx context.Context, userID string) ([]Entry, error) {
	entries, err := s.repo.List(ctx, userID)
	switch {
	case err == nil:
		return entries, nil
	case errors.Is(err, kv.ErrMalformed):
		warnCtx := s.logg.WithFields(ctx, map[string]any{"user_id": userID, "error": err.Error()})
		s.logg.Warn(warnCtx, "stored wishlist is malformed, starting empty")
		return []Entry{}, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
}

func (s *service) save(ctx context.Context, userID string, entries []Entry) error {
	if err := s.repo.Save(ctx, userID, entries); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist wishlist")
	}
	return nil
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
