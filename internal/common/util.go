// Package common contains small helpers shared across client components.
package common

import "crypto/rand"

// RandBytes returns size cryptographically random bytes.
func RandBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// WipeBytes overwrites the slice with zeros. Used to remove passwords and key
// material from memory once they are no longer needed. A nil slice is a no-op.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
