package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
)

// Repository encapsulates wishlist persistence, one document per user.
type Repository struct {
	store kv.Store
}

// NewRepository constructs a wishlist repository bound to the provided store.
func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store}
}

// List returns the user's entries in insertion order. A missing document is an empty
// wishlist; a malformed one is returned as kv.ErrMalformed for the caller to decide.
func (r *Repository) List(ctx context.Context, userID string) ([]Entry, error) {
	var entries []Entry
	err := kv.GetJSON(ctx, r.store, kv.WishlistKey(userID), &entries)
	if errors.Is(err, kv.ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return dedupe(entries), nil
}

// Save overwrites the user's wishlist.
func (r *Repository) Save(ctx context.Context, userID string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	return kv.SetJSON(ctx, r.store, kv.WishlistKey(userID), entries, 0)
}

// AddItem appends the product unless it is already present. It reports whether the
// list changed.
func AddItem(entries []Entry, productID string, now time.Time) ([]Entry, bool) {
	if indexOf(entries, productID) >= 0 {
		return entries, false
	}
	return append(entries, Entry{ProductID: productID, AddedAt: now.UTC()}), true
}

// RemoveItem drops the product if present.
func RemoveItem(entries []Entry, productID string) ([]Entry, bool) {
	idx := indexOf(entries, productID)
	if idx < 0 {
		return entries, false
	}
	out := make([]Entry, 0, len(entries)-1)
	out = append(out, entries[:idx]...)
	return append(out, entries[idx+1:]...), true
}

func indexOf(entries []Entry, productID string) int {
	for i, e := range entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

func dedupe(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ProductID == "" {
			continue
		}
		if _, ok := seen[e.ProductID]; ok {
			continue
		}
		seen[e.ProductID] = struct{}{}
		out = append(out, e)
	}
	return out
}
