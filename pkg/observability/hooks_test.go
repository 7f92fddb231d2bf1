package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var (
	_ IndexHooks  = (*PrometheusHooks)(nil)
	_ SearchHooks = (*PrometheusHooks)(nil)
	_ StoreHooks  = (*PrometheusHooks)(nil)
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	i := NoopIndexHooks{}
	i.OnBuildStart(ctx, 100)
	i.OnBuildComplete(ctx, 100, time.Second, nil)
	i.OnLoad(ctx, errors.New("corrupt"))

	s := NoopSearchHooks{}
	s.OnSearchComplete(ctx, "found", 12, time.Millisecond)

	st := NoopStoreHooks{}
	st.OnStoreHit(ctx, "file")
	st.OnStoreMiss(ctx, "redis")
	st.OnStoreSet(ctx, "badger", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Index().(NoopIndexHooks); !ok {
		t.Error("Index() should return NoopIndexHooks by default")
	}
	if _, ok := Search().(NoopSearchHooks); !ok {
		t.Error("Search() should return NoopSearchHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	h := NewPrometheusHooks(prometheus.NewRegistry())
	SetIndexHooks(h)
	SetSearchHooks(h)
	SetStoreHooks(h)
	if Index() != IndexHooks(h) || Search() != SearchHooks(h) || Store() != StoreHooks(h) {
		t.Error("Set*Hooks should set custom hooks")
	}

	Reset()
	if _, ok := Index().(NoopIndexHooks); !ok {
		t.Error("Reset() should restore NoopIndexHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testIndexHooks{}
	SetIndexHooks(custom)
	SetIndexHooks(nil)

	if Index() != IndexHooks(custom) {
		t.Error("SetIndexHooks(nil) should be ignored")
	}
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	h := NewPrometheusHooks(prometheus.NewRegistry())

	h.OnBuildComplete(ctx, 40, time.Second, nil)
	h.OnBuildComplete(ctx, 40, time.Second, errors.New("malformed"))
	h.OnLoad(ctx, nil)
	h.OnSearchComplete(ctx, "exhausted", 500, time.Millisecond)
	h.OnSearchComplete(ctx, "found", 3, time.Millisecond)
	h.OnSearchComplete(ctx, "found", 7, time.Millisecond)
	h.OnStoreMiss(ctx, "file")
	h.OnStoreSet(ctx, "file", 256)
	h.OnStoreHit(ctx, "file")

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"builds success", testutil.ToFloat64(h.BuildsTotal.WithLabelValues("success")), 1},
		{"builds error", testutil.ToFloat64(h.BuildsTotal.WithLabelValues("error")), 1},
		{"loads success", testutil.ToFloat64(h.LoadsTotal.WithLabelValues("success")), 1},
		{"searches found", testutil.ToFloat64(h.SearchesTotal.WithLabelValues("found")), 2},
		{"searches exhausted", testutil.ToFloat64(h.SearchesTotal.WithLabelValues("exhausted")), 1},
		{"store hit", testutil.ToFloat64(h.StoreOpsTotal.WithLabelValues("file", "hit")), 1},
		{"store miss", testutil.ToFloat64(h.StoreOpsTotal.WithLabelValues("file", "miss")), 1},
		{"store bytes", testutil.ToFloat64(h.StoreBytesTotal.WithLabelValues("file")), 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(h.SearchStates); n != 1 {
		t.Errorf("CollectAndCount(SearchStates) = %d, want 1", n)
	}
}

type testIndexHooks struct{ NoopIndexHooks }
