// Package storage holds the key/value stores behind the basket (durable) and
// the order handoff (session scoped).
package storage

import (
	"context"
	"errors"
)

// Store is a byte oriented key/value store. Consumers own the encoding.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var (
	ErrNotFound      = errors.New("key not found")
	ErrUnavailable   = errors.New("storage unavailable")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)
