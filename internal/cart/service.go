package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	product "github.com/angelmondragon/farmfresh-backend/internal/products"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/metrics"
)

type productLoader interface {
	GetProduct(ctx context.Context, id string) (product.Product, error)
}

// Service exposes cart operations per cart profile.
type Service interface {
	Get(ctx context.Context, profileID string) (*Cart, error)
	AddItem(ctx context.Context, profileID, productID string, quantity int) (*Cart, error)
	SetQuantity(ctx context.Context, profileID, productID string, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, profileID, productID string) (*Cart, error)
	Clear(ctx context.Context, profileID string) error
	Summary(ctx context.Context, profileID string) (Summary, error)
}

// ServiceParams bundles the cart service dependencies.
type ServiceParams struct {
	Store       kv.Store
	Products    productLoader
	Logger      *logger.Logger
	Metrics     *metrics.Storefront
	DeliveryFee decimal.Decimal
}

type service struct {
	store       kv.Store
	products    productLoader
	logg        *logger.Logger
	metrics     *metrics.Storefront
	deliveryFee decimal.Decimal
	now         func() time.Time
}

// NewService builds a cart service backed by the key-value store.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product loader is required")
	}
	if params.DeliveryFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee must not be negative")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:       params.Store,
		products:    params.Products,
		logg:        logg,
		metrics:     params.Metrics,
		deliveryFee: params.DeliveryFee,
		now:         time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, profileID string) (*Cart, error) {
	if err := requireProfile(profileID); err != nil {
		return nil, err
	}
	return s.load(ctx, profileID)
}

func (s *service) AddItem(ctx context.Context, profileID, productID string, quantity int) (*Cart, error) {
	if err := requireProfile(profileID); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer").
			WithDetails(map[string]any{"quantity": quantity})
	}
	p, err := s.products.GetProduct(ctx, strings.TrimSpace(productID))
	if err != nil {
		return nil, err
	}
	if !p.Available() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock").
			WithDetails(map[string]any{"product_id": p.ID})
	}

	return s.mutate(ctx, profileID, "add", func(c *Cart) error {
		return c.AddItem(p, quantity, s.now())
	})
}

func (s *service) SetQuantity(ctx context.Context, profileID, productID string, quantity int) (*Cart, error) {
	if err := requireProfile(profileID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, profileID, "set_quantity", func(c *Cart) error {
		c.SetQuantity(strings.TrimSpace(productID), quantity)
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, profileID, productID string) (*Cart, error) {
	if err := requireProfile(profileID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, profileID, "remove", func(c *Cart) error {
		c.RemoveItem(strings.TrimSpace(productID))
		return nil
	})
}

func (s *service) Clear(ctx context.Context, profileID string) error {
	if err := requireProfile(profileID); err != nil {
		return err
	}
	_, err := s.mutate(ctx, profileID, "clear", func(c *Cart) error {
		c.Clear()
		return nil
	})
	return err
}

func (s *service) Summary(ctx context.Context, profileID string) (Summary, error) {
	c, err := s.Get(ctx, profileID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(c, s.deliveryFee), nil
}

func (s *service) mutate(ctx context.Context, profileID, op string, fn func(*Cart) error) (*Cart, error) {
	c, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := kv.SetJSON(ctx, s.store, kv.CartKey(profileID), c.Items, 0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	s.metrics.IncCartMutation(op)
	return c, nil
}

// load rehydrates the cart. Missing or malformed data yields an empty cart.
func (s *service) load(ctx context.Context, profileID string) (*Cart, error) {
	key := kv.CartKey(profileID)
	var items []LineItem
	err := kv.GetJSON(ctx, s.store, key, &items)
	switch {
	case err == nil:
		return FromItems(items), nil
	case errors.Is(err, kv.ErrNotFound):
		return New(), nil
	case errors.Is(err, kv.ErrMalformed):
		warnCtx := s.logg.WithFields(ctx, map[string]any{"key": key, "error": err.Error()})
		s.logg.Warn(warnCtx, "stored cart is malformed, starting empty")
		return New(), nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
}

func requireProfile(profileID string) error {
	if strings.TrimSpace(profileID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart profile is required")
	}
	return nil
}
