// Package storage provides the persistent key-value medium the stores write
// to. Values are UTF-8 JSON text keyed by namespaced strings; there are no
// transactions, so read-modify-write sequences race and the last writer wins.
package storage

import "context"

// KV is the storage medium contract. Get reports presence explicitly so an
// absent key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
