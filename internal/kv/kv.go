// internal/kv/kv.go

// Package kv defines the byte-oriented key-value contract the party store is
// built on, with a Redis-backed implementation for production and an
// in-memory one for tests and local development.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound indicates no value exists under a key.
var ErrNotFound = errors.New("kv: key not found")

// ErrModified indicates a conditional write lost to a concurrent writer: the
// value under the key no longer matches what the caller read.
var ErrModified = errors.New("kv: value modified concurrently")

// Store is a shared, durable key-value space.
type Store interface {
	// Get returns the value under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key unconditionally. Last writer wins.
	Set(ctx context.Context, key string, value []byte) error

	// SetIfUnchanged writes value only if the current value under key equals
	// old; old == nil requires the key to be absent. A mismatch returns
	// ErrModified and leaves the key untouched.
	SetIfUnchanged(ctx context.Context, key string, old, value []byte) error

	// Scan returns up to limit keys matching prefix. Enumeration order is
	// whatever the backend yields and is not stable between calls.
	Scan(ctx context.Context, prefix string, limit int) ([]string, error)

	// MGet fetches values for keys in one round trip. A key with no value
	// yields a nil entry at its position rather than an error.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
}
