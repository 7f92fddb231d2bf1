package store

import (
	"context"
	"time"

	"github.com/matzehuels/distindex/pkg/observability"
)

// Instrument wraps a store so that hits, misses and writes are reported to
// the registered [observability.StoreHooks] under the given backend name.
func Instrument(backend string, s Store) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.Store.Get(ctx, key)
	switch {
	case err != nil:
	case ok:
		observability.Store().OnStoreHit(ctx, s.backend)
	default:
		observability.Store().OnStoreMiss(ctx, s.backend)
	}
	return data, ok, err
}

func (s *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.Store.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Store().OnStoreSet(ctx, s.backend, len(data))
	return nil
}
