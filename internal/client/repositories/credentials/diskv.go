package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvRepository stores credentials as flat files, one per key. It is the
// fallback backend for environments where sqlite is unwanted.
type DiskvRepository struct {
	d *diskv.Diskv
}

func NewDiskvRepository(basePath string) *DiskvRepository {
	return &DiskvRepository{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    func(s string) []string { return []string{} },
			CacheSizeMax: 1 << 16,
		}),
	}
}

func (r *DiskvRepository) Get(ctx context.Context, key string) (string, error) {
	value, err := r.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("get credentials[%s]: %w", key, err)
	}
	return string(value), nil
}

func (r *DiskvRepository) Set(ctx context.Context, key, value string) error {
	if err := r.d.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("set credentials[%s]: %w", key, err)
	}
	return nil
}

func (r *DiskvRepository) Delete(ctx context.Context, key string) error {
	err := r.d.Erase(key)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete credentials[%s]: %w", key, err)
	}
	return nil
}

func (r *DiskvRepository) Clear(ctx context.Context) error {
	if err := r.d.EraseAll(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

var _ Repository = (*DiskvRepository)(nil)
