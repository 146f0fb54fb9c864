package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Backend.Read for missing keys. The typed
// repositories translate it into an empty default, so a fresh store
// behaves like one with every top-level key backfilled.
var ErrNotFound = errors.New("key not found")

// Backend is the raw persistence contract: JSON documents addressed by
// slash-segmented keys. One key per subtree, so a mutation only ever
// rewrites the subtree it touched.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, val []byte) error
	Erase(ctx context.Context, key string) error
	KeysPrefix(ctx context.Context, prefix string) ([]string, error)
}

func readJSON(ctx context.Context, b Backend, key string, out any) error {
	data, err := b.Read(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil // missing key loads as the zero default
		}
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func writeJSON(ctx context.Context, b Backend, key string, val any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.Write(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
