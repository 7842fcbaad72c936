package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "livedata"

// Metrics groups the collectors shared by the cache, throttle and provider
// chain. A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheLookups     *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	rateLimitRetries *prometheus.CounterVec
	fallbacks        prometheus.Counter
	throttleWait     prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Freshness cache lookups by cache name and result (hit, miss, stale).",
		}, []string{"cache", "result"}),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Upstream provider requests by source and outcome.",
		}, []string{"source", "outcome"}),
		rateLimitRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_retries_total",
			Help:      "Backoff retries triggered by rate-limit responses.",
		}, []string{"source"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_quotes_total",
			Help:      "Quotes served by the price-only fallback tier.",
		}),
		throttleWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "throttle_wait_seconds",
			Help:      "Time callers spent waiting on the per-symbol throttle.",
			Buckets:   []float64{0, 0.1, 0.5, 1, 2, 4, 8},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.cacheLookups, m.providerRequests, m.rateLimitRetries, m.fallbacks, m.throttleWait)
	}
	return m
}

func (m *Metrics) CacheLookup(cache, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) ProviderRequest(source, outcome string) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) RateLimitRetry(source string) {
	if m == nil {
		return
	}
	m.rateLimitRetries.WithLabelValues(source).Inc()
}

func (m *Metrics) Fallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

func (m *Metrics) ThrottleWait(d time.Duration) {
	if m == nil {
		return
	}
	m.throttleWait.Observe(d.Seconds())
}
