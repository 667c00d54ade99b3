// Package storage holds uploaded CSV payloads for async bulk imports until the
// worker picks them up.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no payload exists for the key.
var ErrNotFound = errors.New("payload not found")

type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
