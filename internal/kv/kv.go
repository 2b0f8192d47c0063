// Package kv defines the opaque string store the expense store persists
// through. Implementations live in the subpackages and in internal/storage.
package kv

import "context"

// Store is a get/set string store keyed by name.
type Store interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Func adapters make it easy to inject failures in tests.
type (
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key, value string) error
)

// Funcs combines a GetFunc and SetFunc into a Store.
type Funcs struct {
	GetFn GetFunc
	SetFn SetFunc
}

func (f Funcs) Get(ctx context.Context, key string) (string, bool, error) {
	return f.GetFn(ctx, key)
}

func (f Funcs) Set(ctx context.Context, key, value string) error {
	return f.SetFn(ctx, key, value)
}
