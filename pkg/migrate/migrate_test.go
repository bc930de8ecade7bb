package migrate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := ValidateDir(FS(), DefaultDir); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestKVEntriesMigrationContainsSchema(t *testing.T) {
	matches, err := fs.Glob(FS(), DefaultDir+"/*_create_kv_entries.sql")
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one kv_entries migration, got %v", matches)
	}

	data, err := fs.ReadFile(FS(), matches[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS kv_entries", "key VARCHAR(255) PRIMARY KEY", "expires_at", "DROP TABLE IF EXISTS kv_entries"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	bad := fstest.MapFS{
		"migrations/create_things.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	if err := ValidateDir(bad, "migrations"); err == nil {
		t.Fatal("expected invalid filename to fail")
	}

	missingDown := fstest.MapFS{
		"migrations/20260101000000_things.sql": {Data: []byte("-- +goose Up\n")},
	}
	if err := ValidateDir(missingDown, "migrations"); err == nil {
		t.Fatal("expected missing down section to fail")
	}

	dup := fstest.MapFS{
		"migrations/20260101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"migrations/20260101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	if err := ValidateDir(dup, "migrations"); err == nil {
		t.Fatal("expected duplicate versions to fail")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Orders Index!", now)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if filepath.Base(path) != "20260301120000_add_orders_index.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read created file: %v", err)
	}
	if !strings.Contains(string(data), "-- +goose Down") {
		t.Fatalf("template missing down section")
	}

	if _, err := CreateSQLMigration(dir, "Add Orders Index!", now); err == nil {
		t.Fatal("expected duplicate file to fail")
	}
	if _, err := CreateSQLMigration(dir, "!!!", now); err == nil {
		t.Fatal("expected empty sanitized name to fail")
	}
}

func TestRunRequiresDatabase(t *testing.T) {
	if err := Run(context.Background(), nil, "up", nil); err == nil {
		t.Fatal("expected nil db to fail")
	}
	if err := MigrateToVersion(context.Background(), nil, "not-a-version", nil); err == nil {
		t.Fatal("expected malformed version to fail")
	}
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	bad := fstest.MapFS{
		"migrations/create_things.sql":         {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"migrations/20260101000000_things.sql": {Data: []byte("-- +goose Up\n")},
		"migrations/README.md":                 {Data: []byte("notes")},
	}
	err := ValidateDir(bad, "migrations")
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	for _, want := range []string{"create_things.sql", "missing +goose Down"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestSlugify(t *testing.T) {
	if got := slugify("  Add Orders--Index 2 "); got != "add_orders_index_2" {
		t.Fatalf("unexpected slug %q", got)
	}
}
