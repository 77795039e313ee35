package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
)

// File stores the snapshot as a JSON file, replaced atomically on every save.
type File struct {
	path string
}

// NewFile returns a File adapter for path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file.
func (f *File) Path() string { return f.path }

func (f *File) Load(ctx context.Context) []model.Product {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			obs.Warn(ctx, "snapshot_unreadable", zap.String("path", f.path), zap.Error(err))
		}
		return []model.Product{}
	}
	products, err := Decode(data)
	if err != nil {
		obs.Warn(ctx, "snapshot_corrupt", zap.String("path", f.path), zap.Error(err))
		return []model.Product{}
	}
	return products
}

func (f *File) Save(_ context.Context, products []model.Product) error {
	data, err := Encode(products)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".products-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "write temp snapshot")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "sync temp snapshot")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(err, "close temp snapshot")
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return errors.Wrap(err, "replace snapshot")
	}
	return nil
}

func (f *File) Close() error { return nil }
