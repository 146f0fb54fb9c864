package repositories

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// diskBackend stores each document as one file under the base path.
// Key segments map to directories, so `user/U1/tasks` lands in
// `<base>/user/U1/tasks`.
type diskBackend struct {
	d *diskv.Diskv
}

func NewDiskBackend(basePath string) Backend {
	return &diskBackend{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return strings.Join(pathKey.Path, "/") + "/" + pathKey.FileName
}

func (b *diskBackend) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := b.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (b *diskBackend) Write(ctx context.Context, key string, val []byte) error {
	return b.d.Write(key, val)
}

func (b *diskBackend) Erase(ctx context.Context, key string) error {
	if err := b.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (b *diskBackend) KeysPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range b.d.KeysPrefix(prefix, ctx.Done()) {
		keys = append(keys, key)
	}
	return keys, nil
}
