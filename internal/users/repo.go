package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Create when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository exposes user persistence over the registered-users list.
type Repository struct {
	store kv.Store
	now   func() time.Time
}

// NewRepository constructs a users repo bound to the provided store.
func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// Create appends a new user and returns the persisted record.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if indexByEmail(list, dto.Email) >= 0 {
		return nil, ErrEmailTaken
	}

	dto.Email = normalizeEmail(dto.Email)
	user := dto.toModel(uuid.NewString(), r.now().UTC())
	list = append(list, user)
	if err := kv.SetJSON(ctx, r.store, kv.UsersKey(), list, 0); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email, ignoring case.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexByEmail(list, email)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &list[idx], nil
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, ErrNotFound
}

// UpdateProfile applies the update and returns the stored record.
func (r *Repository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error) {
	return r.mutate(ctx, id, func(u *User) {
		update.apply(u)
	})
}

// RecordLogin stamps last_login_at. A non-empty rehashed value replaces the
// stored password hash in the same write.
func (r *Repository) RecordLogin(ctx context.Context, id string, at time.Time, rehashed string) error {
	_, err := r.mutate(ctx, id, func(u *User) {
		at := at.UTC()
		u.LastLoginAt = &at
		if rehashed != "" {
			u.PasswordHash = rehashed
		}
	})
	return err
}

func (r *Repository) mutate(ctx context.Context, id string, fn func(*User)) (*User, error) {
	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		fn(&list[i])
		list[i].UpdatedAt = r.now().UTC()
		if err := kv.SetJSON(ctx, r.store, kv.UsersKey(), list, 0); err != nil {
			return nil, err
		}
		updated := list[i]
		return &updated, nil
	}
	return nil, ErrNotFound
}

// load treats a missing list as empty. A malformed list is returned as kv.ErrMalformed
// so registration never silently overwrites existing accounts; the auth service
// downgrades it to "not found" on the login and lookup paths.
func (r *Repository) load(ctx context.Context) ([]User, error) {
	var list []User
	err := kv.GetJSON(ctx, r.store, kv.UsersKey(), &list)
	if errors.Is(err, kv.ErrNotFound) {
		return []User{}, nil
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func indexByEmail(list []User, email string) int {
	email = normalizeEmail(email)
	for i := range list {
		if strings.EqualFold(list[i].Email, email) {
			return i
		}
	}
	return -1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
