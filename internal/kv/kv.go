// Package kv defines the key/value abstraction reader state is persisted
// through. Values are opaque byte slices; callers store JSON.
//
// Implementations:
//
//	database/kv  gorm + sqlite (default)
//	kv/redis     go-redis
//	kv/postgres  database/sql + lib/pq
//	kv.Memory    in-process map, used by tests
//
// List layers a JSON array of records over any Store.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks s if it supports it and reports nil otherwise.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
