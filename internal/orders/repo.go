package orders

import (
	"context"
	"errors"

	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
)

// ErrNotFound is returned when no order carries the requested id.
var ErrNotFound = errors.New("order not found")

// Repository persists the orders list as one JSON document.
type Repository struct {
	store kv.Store
}

// NewRepository constructs an orders repository bound to the provided store.
func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store}
}

// All returns every order in placement order. A missing list is empty; a malformed one
// is returned as kv.ErrMalformed.
func (r *Repository) All(ctx context.Context) ([]Order, error) {
	var list []Order
	err := kv.GetJSON(ctx, r.store, kv.OrdersKey(), &list)
	if errors.Is(err, kv.ErrNotFound) {
		return []Order{}, nil
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Append adds the order to the end of the list.
func (r *Repository) Append(ctx context.Context, order Order) error {
	list, err := r.All(ctx)
	if err != nil {
		return err
	}
	for _, existing := range list {
		if existing.ID == order.ID {
			return errors.New("duplicate order id " + order.ID)
		}
	}
	return kv.SetJSON(ctx, r.store, kv.OrdersKey(), append(list, order.clone()), 0)
}

// FindByID loads one order.
func (r *Repository) FindByID(ctx context.Context, id string) (*Order, error) {
	list, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			out := list[i].clone()
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Update applies fn to the stored order and writes the list back. fn returning an
// error aborts without writing.
func (r *Repository) Update(ctx context.Context, id string, fn func(*Order) error) (*Order, error) {
	list, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if err := fn(&list[i]); err != nil {
			return nil, err
		}
		if err := kv.SetJSON(ctx, r.store, kv.OrdersKey(), list, 0); err != nil {
			return nil, err
		}
		out := list[i].clone()
		return &out, nil
	}
	return nil, ErrNotFound
}
