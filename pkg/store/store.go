package store

import (
	"context"
	"time"
)

// Store holds serialized index snapshots under string keys.
//
// Get reports a miss with ok == false and a nil error; errors are reserved
// for backend failures. A zero ttl on Set means the entry never expires.
// Implementations are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives store keys for snapshots.
type Keyer interface {
	// SnapshotKey returns the key of the snapshot of the graph with the given
	// checksum written in the given format version.
	SnapshotKey(checksum string, format int) string
}

// DefaultKeyer generates "snapshot:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey implements [Keyer].
func (DefaultKeyer) SnapshotKey(checksum string, format int) string {
	return hashKey("snapshot", checksum, format)
}

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one backend without seeing each other's snapshots.
//
//	k := store.NewScopedKeyer(store.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SnapshotKey implements [Keyer].
func (k *ScopedKeyer) SnapshotKey(checksum string, format int) string {
	return k.prefix + k.inner.SnapshotKey(checksum, format)
}

// expired reports whether an entry with the given expiry has lapsed. A zero
// expiry never lapses.
func expired(at time.Time) bool {
	return !at.IsZero() && time.Now().After(at)
}

// expiry converts a ttl into an absolute expiry, zero for no expiry.
func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
