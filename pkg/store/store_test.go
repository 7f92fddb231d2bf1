package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/distindex/pkg/observability"
)

// exercise runs the contract every persistent backend must satisfy.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := s.Get(ctx, "snapshot:a"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := s.Set(ctx, "snapshot:a", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := s.Get(ctx, "snapshot:a")
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, hit %v, err %v", data, hit, err)
	}

	if err := s.Set(ctx, "snapshot:a", []byte("newer"), 0); err != nil {
		t.Fatalf("Set(overwrite) error: %v", err)
	}
	if data, _, _ := s.Get(ctx, "snapshot:a"); string(data) != "newer" {
		t.Errorf("Get after overwrite = %q, want newer", data)
	}

	if err := s.Delete(ctx, "snapshot:a"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := s.Get(ctx, "snapshot:a"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := s.Delete(ctx, "snapshot:a"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
	if err := s.Set(ctx, "bad key", nil, 0); err == nil {
		t.Error("Set with whitespace key should fail")
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	defer s.Close()

	if err := s.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ := s.Get(ctx, "key"); hit {
		t.Error("NullStore should not store data")
	}
	if err := s.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestFileStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := s.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(s.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileStore_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	path := s.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := s.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v, want miss", hit, err)
	}
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadgerStore error: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestNetworkStores_RequireAddress(t *testing.T) {
	ctx := context.Background()
	if _, err := NewRedisStore(ctx, RedisConfig{}); err == nil {
		t.Error("NewRedisStore without address should fail")
	}
	if _, err := NewMongoStore(ctx, MongoConfig{}); err == nil {
		t.Error("NewMongoStore without uri should fail")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestKeyers(t *testing.T) {
	k := NewDefaultKeyer()
	a := k.SnapshotKey("abc", 1)
	if a != k.SnapshotKey("abc", 1) {
		t.Error("SnapshotKey should be deterministic")
	}
	if a == k.SnapshotKey("abc", 2) || a == k.SnapshotKey("abd", 1) {
		t.Error("SnapshotKey should depend on checksum and format")
	}

	scoped := NewScopedKeyer(nil, "staging:")
	if got, want := scoped.SnapshotKey("abc", 1), "staging:"+a; got != want {
		t.Errorf("ScopedKeyer.SnapshotKey = %s, want %s", got, want)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = time.Second }()
	ctx := context.Background()
	boom := errors.New("boom")

	calls := 0
	err := RetryWithBackoff(ctx, func() error { calls++; return boom })
	if !errors.Is(err, boom) || calls != 1 {
		t.Errorf("plain error: calls = %d, err = %v, want 1 call", calls, err)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(boom) })
	if !errors.Is(err, boom) || calls != 3 {
		t.Errorf("retryable error: calls = %d, err = %v, want 3 calls", calls, err)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(boom)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("recovering call: calls = %d, err = %v", calls, err)
	}

	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}

func TestInstrument(t *testing.T) {
	h := observability.NewPrometheusHooks(prometheus.NewRegistry())
	observability.SetStoreHooks(h)
	defer observability.Reset()

	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	is := Instrument("file", s)

	_, _, _ = is.Get(ctx, "k")
	_ = is.Set(ctx, "k", []byte("1234"), 0)
	_, _, _ = is.Get(ctx, "k")
	_, _, _ = is.Get(ctx, "k")

	for op, want := range map[string]float64{"hit": 2, "miss": 1, "set": 1} {
		if got := testutil.ToFloat64(h.StoreOpsTotal.WithLabelValues("file", op)); got != want {
			t.Errorf("StoreOpsTotal[%s] = %v, want %v", op, got, want)
		}
	}
	if got := testutil.ToFloat64(h.StoreBytesTotal.WithLabelValues("file")); got != 4 {
		t.Errorf("StoreBytesTotal = %v, want 4", got)
	}
}
