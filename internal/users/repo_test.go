package users

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kv.NewMemory())

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "  Nimal@Example.com ",
		PasswordHash: "hash",
		Name:         "Nimal",
		Role:         enums.UserRoleConsumer,
		FarmName:     "ignored",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Email != "nimal@example.com" {
		t.Fatalf("unexpected user %+v", created)
	}
	if created.FarmName != "" {
		t.Fatalf("farm fields are dropped for consumers, got %q", created.FarmName)
	}

	byEmail, err := repo.FindByEmail(ctx, "NIMAL@example.com")
	if err != nil || byEmail.ID != created.ID {
		t.Fatalf("find by email: %+v %v", byEmail, err)
	}

	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil || byID.PasswordHash != "hash" {
		t.Fatalf("find by id: %+v %v", byID, err)
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kv.NewMemory())

	if _, err := repo.Create(ctx, CreateUserDTO{Email: "a@b.lk", Role: enums.UserRoleConsumer}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, CreateUserDTO{Email: "A@B.LK", Role: enums.UserRoleFarmer}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRepositoryUpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kv.NewMemory())

	farmer, err := repo.Create(ctx, CreateUserDTO{
		Email:    "farmer@green.lk",
		Name:     "John",
		Role:     enums.UserRoleFarmer,
		FarmName: "Green Valley",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Farmer John"
	farm := "Green Valley Farm"
	updated, err := repo.UpdateProfile(ctx, farmer.ID, ProfileUpdate{
		Name:           &name,
		FarmName:       &farm,
		Certifications: []string{"Organic"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name || updated.FarmName != farm || !reflect.DeepEqual(updated.Certifications, []string{"Organic"}) {
		t.Fatalf("unexpected update %+v", updated)
	}

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.RecordLogin(ctx, farmer.ID, at, ""); err != nil {
		t.Fatalf("record login: %v", err)
	}
	reloaded, err := repo.FindByID(ctx, farmer.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.LastLoginAt == nil || !reloaded.LastLoginAt.Equal(at) {
		t.Fatalf("expected last login %s got %v", at, reloaded.LastLoginAt)
	}

	if _, err := repo.UpdateProfile(ctx, "missing", ProfileUpdate{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryMalformedListIsAnError(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	if err := store.Set(ctx, kv.UsersKey(), []byte("{not json"), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := NewRepository(store)
	if _, err := repo.Create(ctx, CreateUserDTO{Email: "x@y.lk", Role: enums.UserRoleConsumer}); !errors.Is(err, kv.ErrMalformed) {
		t.Fatalf("create over corrupt list: expected ErrMalformed, got %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "x@y.lk"); !errors.Is(err, kv.ErrMalformed) {
		t.Fatalf("find over corrupt list: expected ErrMalformed, got %v", err)
	}
}

func TestFromModelOmitsHash(t *testing.T) {
	dto := FromModel(&User{ID: "u1", PasswordHash: "secret", Certifications: []string{"Organic"}})
	if dto.ID != "u1" || !reflect.DeepEqual(dto.Certifications, []string{"Organic"}) {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if FromModel(nil) != nil {
		t.Fatal("expected nil dto for nil user")
	}
}
