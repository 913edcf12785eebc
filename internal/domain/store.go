package domain

import "context"

// KVStore is the key-value storage handle shared by the repository and the API cache.
// Values are opaque serialized blobs; a missing key is reported as (nil, false, nil).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}
