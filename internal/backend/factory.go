// Package backend selects and constructs the storage medium from
// configuration.
package backend

import (
	"fmt"

	"kharcha/internal/config"
	"kharcha/internal/storage"
)

// New returns the KV store named by cfg.Backend.
func New(cfg *config.Config) (storage.KV, error) {
	switch cfg.Backend {
	case "sqlite":
		kv, err := storage.NewSQLiteKV(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("sqlite backend: %w", err)
		}
		return kv, nil
	case "memory":
		return storage.NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.Backend)
	}
}
