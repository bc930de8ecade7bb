package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
)

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: enums.StorageDriverMemory}}, logger.Nop())
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := store.(*Memory); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenSQLiteAutoMigrates(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "farmfresh.db")
	cfg := &config.Config{Storage: config.StorageConfig{Driver: enums.StorageDriverSQLite, SQLiteDSN: dsn}}

	store, err := Open(ctx, cfg, logger.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	if err := store.Set(ctx, UsersKey(), []byte("[]"), 0); err != nil {
		t.Fatalf("set on migrated sqlite: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: enums.StorageDriver("etcd")}}
	if _, err := Open(context.Background(), cfg, logger.Nop()); err == nil {
		t.Fatal("expected unknown driver to fail")
	}
}
