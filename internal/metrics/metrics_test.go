package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CacheLookup("quote", "hit")
	m.CacheLookup("quote", "hit")
	m.ProviderRequest("yahoo", "ok")
	m.RateLimitRetry("yahoo")
	m.Fallback()
	m.ThrottleWait(time.Second)

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("quote", "hit")); got != 2 {
		t.Fatalf("expected 2 cache hits, got %v", got)
	}
	if got := testutil.ToFloat64(m.providerRequests.WithLabelValues("yahoo", "ok")); got != 1 {
		t.Fatalf("expected 1 provider request, got %v", got)
	}
	if got := testutil.ToFloat64(m.fallbacks); got != 1 {
		t.Fatalf("expected 1 fallback, got %v", got)
	}
	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Fatalf("expected gathered metrics, got %d (%v)", n, err)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CacheLookup("quote", "miss")
	m.ProviderRequest("yahoo", "error")
	m.RateLimitRetry("yahoo")
	m.Fallback()
	m.ThrottleWait(time.Millisecond)
}
