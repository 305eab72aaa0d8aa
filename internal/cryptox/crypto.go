// Package cryptox implements the sealing of credential values kept on disk.
// Values are encrypted with ChaCha20-Poly1305 under a per-installation key
// stored next to the credentials database.
package cryptox

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/itd-social/itd-client/internal/common"
)

// KeySize is the length of the sealing key in bytes.
const KeySize = chacha20poly1305.KeySize

var ErrInvalidBox = errors.New("invalid sealed value")

// Seal encrypts plaintext with the given 32-byte key. A fresh random nonce is
// generated per call and prepended to the returned ciphertext.
func Seal(plaintext, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	nonce, err := common.RandBytes(aead.NonceSize())
	if err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a value produced by Seal. Returns ErrInvalidBox if the value
// is too short or fails authentication.
func Open(box, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	if len(box) < aead.NonceSize() {
		return nil, ErrInvalidBox
	}

	nonce, ciphertext := box[:aead.NonceSize()], box[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidBox
	}
	return plaintext, nil
}

// LoadOrCreateKey reads the sealing key from path, generating and persisting
// a new one (mode 0600) on first run.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("key file %s: unexpected length %d", path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	key, err = common.RandBytes(KeySize)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
