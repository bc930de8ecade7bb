package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCreateThenValidate(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	if err := run(context.Background(), []string{"-cmd", "create", "-dir", dir, "-name", "add wishlist index"}, &out); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out.String(), "_add_wishlist_index.sql") {
		t.Fatalf("expected created file name in output, got %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), []string{"-cmd", "validate", "-dir", dir}, &out); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), "migrations ok") {
		t.Fatalf("expected validation summary, got %q", out.String())
	}
}

func TestRunValidateEmbedded(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-cmd", "validate", "-embedded"}, &out); err != nil {
		t.Fatalf("validate embedded: %v", err)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.sql"), []byte("select 1;"), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}

	cases := map[string][]string{
		"unversioned file": {"-cmd", "validate", "-dir", dir},
		"create sans name": {"-cmd", "create", "-dir", dir},
		"unknown command":  {"-cmd", "explode"},
	}
	for name, args := range cases {
		if err := run(context.Background(), args, &bytes.Buffer{}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
