package orders

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmfresh-backend/internal/cart"
	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/metrics"
	"github.com/angelmondragon/farmfresh-backend/pkg/pagination"
	"github.com/angelmondragon/farmfresh-backend/pkg/types"
)

const defaultDeliveryLeadTime = 48 * time.Hour

type cartStore interface {
	Get(ctx context.Context, profileID string) (*cart.Cart, error)
	Clear(ctx context.Context, profileID string) error
}

// Service defines order placement and lifecycle operations.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*Order, error)
	List(ctx context.Context, userID string, filters ListFilters, page pagination.Params) (*OrderList, error)
	Get(ctx context.Context, userID, orderID string) (*Order, error)
	Tracking(ctx context.Context, userID, orderID string) (*TrackingDTO, error)
	ListAll(ctx context.Context, filters ListFilters, page pagination.Params) (*OrderList, error)
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*Order, error)
	Cancel(ctx context.Context, userID, orderID string) (*Order, error)
}

// ServiceParams bundles the order service dependencies.
type ServiceParams struct {
	Repo              *Repository
	Carts             cartStore
	Logger            *logger.Logger
	Metrics           *metrics.Storefront
	DeliveryFee       decimal.Decimal
	DeliveryLeadTime  time.Duration
	TrackingCodeChars int
}

type service struct {
	repo          *Repository
	carts         cartStore
	logg          *logger.Logger
	metrics       *metrics.Storefront
	deliveryFee   decimal.Decimal
	leadTime      time.Duration
	trackingChars int
	now           func() time.Time
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repository is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	if params.DeliveryFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee must not be negative")
	}
	leadTime := params.DeliveryLeadTime
	if leadTime <= 0 {
		leadTime = defaultDeliveryLeadTime
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:          params.Repo,
		carts:         params.Carts,
		logg:          logg,
		metrics:       params.Metrics,
		deliveryFee:   params.DeliveryFee,
		leadTime:      leadTime,
		trackingChars: params.TrackingCodeChars,
		now:           time.Now,
	}, nil
}

// Checkout converts the cart into a pending order. The order is persisted before the
// cart is cleared; any failure before that point leaves the cart as it was.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*Order, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		s.metrics.IncCheckoutFailure("unauthenticated")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please login to place an order")
	}
	profileID := strings.TrimSpace(input.ProfileID)
	if profileID == "" {
		profileID = kv.UserProfile(userID)
	}

	current, err := s.carts.Get(ctx, profileID)
	if err != nil {
		s.metrics.IncCheckoutFailure("cart_unavailable")
		return nil, err
	}
	if current.IsEmpty() {
		s.metrics.IncCheckoutFailure("empty_cart")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
	}

	address := input.DeliveryAddress.Normalize()
	if missing := missingAddressFields(address); len(missing) > 0 {
		s.metrics.IncCheckoutFailure("invalid_address")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is incomplete").
			WithDetails(map[string]any{"missing": missing})
	}

	order, err := s.buildOrder(userID, current, address, strings.TrimSpace(input.Notes))
	if err != nil {
		s.metrics.IncCheckoutFailure("internal")
		return nil, err
	}

	if err := s.repo.Append(ctx, order); err != nil {
		s.metrics.IncCheckoutFailure("persist_failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	if err := s.carts.Clear(ctx, profileID); err != nil {
		errCtx := s.logg.WithFields(ctx, map[string]any{"order_id": order.ID, "cart_profile": profileID})
		s.logg.Error(errCtx, "order placed but cart was not cleared", err)
	}

	s.metrics.IncOrderCreated()
	infoCtx := s.logg.WithFields(ctx, map[string]any{"order_id": order.ID, "user_id": userID, "grand_total": order.GrandTotal.String()})
	s.logg.Info(infoCtx, "order placed")
	return &order, nil
}

func (s *service) buildOrder(userID string, c *cart.Cart, address types.Address, notes string) (Order, error) {
	now := s.now().UTC()
	id, err := NewOrderID(now)
	if err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order id")
	}
	tracking, err := NewTrackingNumber(s.trackingChars)
	if err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate tracking number")
	}

	fee := cart.DeliveryFeeFor(c.TotalAmount, s.deliveryFee)
	return Order{
		ID:                id,
		UserID:            userID,
		Items:             c.Snapshot(),
		TotalItems:        c.TotalItems,
		TotalAmount:       c.TotalAmount,
		DeliveryFee:       fee,
		GrandTotal:        c.TotalAmount.Add(fee),
		Currency:          cart.Currency,
		Status:            enums.OrderStatusPending,
		DeliveryAddress:   address,
		Notes:             notes,
		TrackingNumber:    tracking,
		StatusHistory:     []StatusChange{{Status: enums.OrderStatusPending, At: now}},
		CreatedAt:         now,
		UpdatedAt:         now,
		EstimatedDelivery: now.Add(s.leadTime),
	}, nil
}

func (s *service) List(ctx context.Context, userID string, filters ListFilters, page pagination.Params) (*OrderList, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	all, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]Order, 0, len(all))
	for _, o := range all {
		if o.UserID == userID {
			owned = append(owned, o)
		}
	}
	return paginate(applyFilters(owned, filters), page), nil
}

func (s *service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Other users' orders are reported as missing rather than forbidden.
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) Tracking(ctx context.Context, userID, orderID string) (*TrackingDTO, error) {
	order, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	dto := order.tracking()
	return &dto, nil
}

func (s *service) ListAll(ctx context.Context, filters ListFilters, page pagination.Params) (*OrderList, error) {
	all, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	return paginate(applyFilters(all, filters), page), nil
}

// UpdateStatus moves the order forward through its lifecycle. Setting the current
// status again is a no-op.
func (s *service) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": string(status), "allowed": enums.OrderStatuses()})
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	changed := false
	updated, err := s.repo.Update(ctx, orderID, func(o *Order) error {
		if o.Status == status {
			return nil
		}
		if !o.Status.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
				WithDetails(map[string]any{"from": string(o.Status), "to": string(status)})
		}
		now := s.now().UTC()
		o.Status = status
		o.UpdatedAt = now
		o.StatusHistory = append(o.StatusHistory, StatusChange{Status: status, At: now})
		switch status {
		case enums.OrderStatusDelivered:
			o.DeliveredAt = &now
		case enums.OrderStatusCancelled:
			o.CancelledAt = &now
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, s.mapRepoError(err, "update order status")
	}
	if changed {
		s.metrics.IncStatusTransition(string(status))
		infoCtx := s.logg.WithFields(ctx, map[string]any{"order_id": orderID, "status": string(status)})
		s.logg.Info(infoCtx, "order status updated")
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, userID, orderID string) (*Order, error) {
	if _, err := s.Get(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, orderID, enums.OrderStatusCancelled)
}

func (s *service) find(ctx context.Context, orderID string) (*Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, s.mapRepoError(err, "load order")
	}
	return order, nil
}

// readAll degrades a malformed orders list to empty for reads.
func (s *service) readAll(ctx context.Context) ([]Order, error) {
	all, err := s.repo.All(ctx)
	switch {
	case err == nil:
		return all, nil
	case errors.Is(err, kv.ErrMalformed):
		warnCtx := s.logg.WithField(ctx, "error", err.Error())
		s.logg.Warn(warnCtx, "stored orders list is malformed, reading as empty")
		return []Order{}, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
}

func (s *service) mapRepoError(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func missingAddressFields(a types.Address) []string {
	var missing []string
	if a.Street == "" {
		missing = append(missing, "street")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	return missing
}

func applyFilters(list []Order, filters ListFilters) []Order {
	out := make([]Order, 0, len(list))
	for _, o := range list {
		if filters.Status != nil && o.Status != *filters.Status {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func paginate(list []Order, page pagination.Params) *OrderList {
	page = page.Normalize()
	return &OrderList{
		Orders:     pagination.Slice(list, page),
		Total:      len(list),
		TotalPages: pagination.TotalPages(len(list), page.Limit),
		Page:       page.Page,
		Limit:      page.Limit,
	}
}
