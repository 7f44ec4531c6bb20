package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/st3v3nmw/hiscore/internal/config"
)

// OpenBackend builds the backend selected by the storage configuration.
func OpenBackend(ctx context.Context, cfg config.Storage) (Backend, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		if err := os.MkdirAll(filepath.Dir(cfg.BasePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}

		return NewFileBackend(cfg.BasePath), nil
	case config.BackendRedis:
		backend, err := OpenRedisBackend(ctx, cfg.RedisURL, cfg.BasePath)
		if err != nil {
			return nil, err
		}

		return backend, nil
	case config.BackendPostgres:
		backend, err := OpenPostgresBackend(ctx, cfg.PostgresDSN, cfg.BasePath)
		if err != nil {
			return nil, err
		}

		return backend, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
