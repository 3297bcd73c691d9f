package cache

import (
	"fmt"
	"log/slog"

	"basket/internal/config"
)

// MakeCache opens the backend named by cfg.
func MakeCache(cfg config.StorageConfig) (ListCache, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewInMemoryCache(), nil
	case config.BackendFile:
		slog.Debug("using file cache", "dir", cfg.Dir)
		return NewFileCache(cfg.Dir), nil
	case config.BackendSQLite:
		slog.Debug("using sqlite cache", "path", cfg.SQLitePath)
		return NewSQLiteCache(cfg.SQLitePath)
	case config.BackendBlob:
		slog.Info("using Azure Blob Storage for cache", "account", cfg.Account, "container", cfg.Container)
		return NewBlobCache(cfg.Account, cfg.AccountKey, cfg.Container)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
