package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/store"
)

// OpenStore constructs the configured snapshot store, instrumented with the
// observability hooks.
func OpenStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Backend {
	case BackendNull:
		s = store.NewNullStore()
	case BackendFile, "":
		dir := cfg.File.Dir
		if dir == "" {
			if dir, err = defaultSnapshotDir(); err != nil {
				return nil, err
			}
		}
		s, err = store.NewFileStore(dir)
	case BackendRedis:
		s, err = store.NewRedisStore(ctx, cfg.Redis)
	case BackendBadger:
		s, err = store.NewBadgerStore(cfg.Badger)
	case BackendMongo:
		s, err = store.NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	name := cfg.Backend
	if name == "" {
		name = BackendFile
	}
	return store.Instrument(name, s), nil
}

// defaultSnapshotDir follows the XDG cache convention
// (~/.cache/distindex/snapshots).
func defaultSnapshotDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "distindex", "snapshots"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate home directory")
	}
	return filepath.Join(home, ".cache", "distindex", "snapshots"), nil
}
