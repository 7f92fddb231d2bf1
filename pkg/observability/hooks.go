// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about index builds, searches, and snapshot store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the index packages never
// import a metrics backend. [NewPrometheusHooks] is the bundled backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    h := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	    observability.SetIndexHooks(h)
//	    observability.SetSearchHooks(h)
//	    observability.SetStoreHooks(h)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Index().OnBuildStart(ctx, nodes)
//	// ... build ...
//	observability.Index().OnBuildComplete(ctx, nodes, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Index Hooks
// =============================================================================

// IndexHooks receives events from building and loading distance indexes.
type IndexHooks interface {
	// OnBuildStart records the start of an index build over a graph with the
	// given number of nodes.
	OnBuildStart(ctx context.Context, nodes int)

	// OnBuildComplete records a finished build. err is nil on success.
	OnBuildComplete(ctx context.Context, nodes int, duration time.Duration, err error)

	// OnLoad records a snapshot load attempt.
	OnLoad(ctx context.Context, err error)
}

// =============================================================================
// Search Hooks
// =============================================================================

// SearchHooks receives events from target-value searches.
type SearchHooks interface {
	// OnSearchComplete records a finished search with its outcome name
	// ("found", "not_found", "exhausted") and the number of states popped.
	OnSearchComplete(ctx context.Context, outcome string, explored int, duration time.Duration)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from snapshot store operations.
type StoreHooks interface {
	// OnStoreHit records a snapshot found in the store.
	OnStoreHit(ctx context.Context, backend string)

	// OnStoreMiss records a lookup that found nothing.
	OnStoreMiss(ctx context.Context, backend string)

	// OnStoreSet records a snapshot write of size bytes.
	OnStoreSet(ctx context.Context, backend string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopIndexHooks is a no-op implementation of IndexHooks.
type NoopIndexHooks struct{}

func (NoopIndexHooks) OnBuildStart(context.Context, int)                         {}
func (NoopIndexHooks) OnBuildComplete(context.Context, int, time.Duration, error) {}
func (NoopIndexHooks) OnLoad(context.Context, error)                             {}

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnSearchComplete(context.Context, string, int, time.Duration) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string)      {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string)     {}
func (NoopStoreHooks) OnStoreSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	indexHooks  IndexHooks  = NoopIndexHooks{}
	searchHooks SearchHooks = NoopSearchHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetIndexHooks registers custom index hooks.
// This should be called once at application startup before any build.
func SetIndexHooks(h IndexHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		indexHooks = h
	}
}

// SetSearchHooks registers custom search hooks.
func SetSearchHooks(h SearchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		searchHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Index returns the registered index hooks.
func Index() IndexHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return indexHooks
}

// Search returns the registered search hooks.
func Search() SearchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return searchHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	indexHooks = NoopIndexHooks{}
	searchHooks = NoopSearchHooks{}
	storeHooks = NoopStoreHooks{}
}
