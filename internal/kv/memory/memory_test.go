package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"planeja/internal/kv"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Get(ctx, kv.KeyLists); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	in := []byte(`[]`)
	if err := s.Set(ctx, kv.KeyLists, in); err != nil {
		t.Fatalf("set: %v", err)
	}
	in[0] = 'x' // caller mutation must not leak into the store

	got, err := s.Get(ctx, kv.KeyLists)
	if err != nil || string(got) != "[]" {
		t.Fatalf("unexpected get: %q err=%v", got, err)
	}

	if err := s.Delete(ctx, kv.KeyLists); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, kv.KeyLists); err != nil {
		t.Fatalf("second delete must be a no-op: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	// No files -> empty store
	if s := NewFromFiles(dir); s.Len() != 0 {
		t.Fatalf("expected empty store when files missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("planeja_data.json", `[{"id":"a"}]`)
	mustWrite("planeja_settings.json", ``)
	mustWrite("unrelated.json", `{}`)

	s := NewFromFiles(dir)
	if s.Len() != 1 {
		t.Fatalf("expected only the lists document to be seeded, got %d", s.Len())
	}
	got, err := s.Get(context.Background(), kv.KeyLists)
	if err != nil || string(got) != `[{"id":"a"}]` {
		t.Fatalf("unexpected seed: %q err=%v", got, err)
	}
}
