package repositories

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func TestDiskBackendRoundTrip(t *testing.T) {
	b := NewDiskBackend(t.TempDir())
	ctx := context.Background()

	if _, err := b.Read(ctx, "user/U1/tasks"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing key, got %v", err)
	}

	doc := []byte(`[{"text":"a","status":"pending"}]`)
	if err := b.Write(ctx, "user/U1/tasks", doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := b.Read(ctx, "user/U1/tasks")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(doc) {
		t.Errorf("round trip mismatch: %s", got)
	}

	if err := b.Erase(ctx, "user/U1/tasks"); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if _, err := b.Read(ctx, "user/U1/tasks"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after erase, got %v", err)
	}

	// Erasing a missing key is not an error.
	if err := b.Erase(ctx, "user/U1/tasks"); err != nil {
		t.Errorf("Erase missing key: %v", err)
	}
}

func TestDiskBackendKeysPrefix(t *testing.T) {
	b := NewDiskBackend(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"space/a/meta", "space/a/tasks", "space/b/meta", "user/U1/tasks"} {
		if err := b.Write(ctx, key, []byte("{}")); err != nil {
			t.Fatalf("Write(%s): %v", key, err)
		}
	}

	keys, err := b.KeysPrefix(ctx, "space/")
	if err != nil {
		t.Fatalf("KeysPrefix: %v", err)
	}
	sort.Strings(keys)
	want := []string{"space/a/meta", "space/a/tasks", "space/b/meta"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
}

func TestMemoryBackendIsolation(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	doc := []byte(`{"a":1}`)
	if err := b.Write(ctx, "k", doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	doc[0] = 'X' // mutating the caller's slice must not reach the store

	got, err := b.Read(ctx, "k")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("stored doc was aliased: %s", got)
	}
}
