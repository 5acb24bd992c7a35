package ports

import "context"

// Port: a flat string key-value store with no expiry of its own.
type KeyValueStore interface {
	// Return the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Replace the value for key.
	Set(ctx context.Context, key string, value string) error
	// Delete key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
