package credentials

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/itd-social/itd-client/internal/cryptox"
)

// Sealed wraps any Repository and encrypts values at rest with the given
// sealing key. Keys stay in the clear; only values are sealed.
type Sealed struct {
	inner Repository
	key   []byte
}

func NewSealed(inner Repository, key []byte) *Sealed {
	return &Sealed{inner: inner, key: key}
}

func (s *Sealed) Get(ctx context.Context, key string) (string, error) {
	stored, err := s.inner.Get(ctx, key)
	if err != nil || stored == "" {
		return "", err
	}

	box, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("credentials[%s]: %w", key, cryptox.ErrInvalidBox)
	}
	plain, err := cryptox.Open(box, s.key)
	if err != nil {
		return "", fmt.Errorf("credentials[%s]: %w", key, err)
	}
	return string(plain), nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	box, err := cryptox.Seal([]byte(value), s.key)
	if err != nil {
		return fmt.Errorf("credentials[%s]: %w", key, err)
	}
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(box))
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *Sealed) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}

var _ Repository = (*Sealed)(nil)
