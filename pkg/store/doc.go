// Package store provides snapshot stores for distance indexes.
//
// A [Store] is a byte-oriented key-value store with expiry. Index snapshots
// are written under keys derived by a [Keyer] from the graph checksum and
// the snapshot format, so a changed graph or format never meets a stale
// snapshot.
//
// # Backends
//
//   - [NullStore]: disables storage; every index is rebuilt
//   - [FileStore]: one JSON entry per key in a hashed directory layout
//   - [RedisStore]: Redis with server-side expiry
//   - [BadgerStore]: embedded Badger database, in memory or on disk
//   - [MongoStore]: one document per key with a TTL index
//
// Network backends retry transient failures with [RetryWithBackoff]. Only
// errors wrapped with [Retryable] are retried.
//
// [Instrument] reports hits, misses and writes to the observability hooks.
package store
