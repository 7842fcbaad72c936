package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"investor-livedata/internal/metrics"

	"github.com/allegro/bigcache/v3"
	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultTTL is how long a cached payload is served before it counts as stale.
const DefaultTTL = 300 * time.Second

// Key identifies a cached payload.
type Key struct {
	Symbol string
	Period string
}

func (k Key) String() string {
	return k.Symbol + "|" + k.Period
}

type envelope[V any] struct {
	StoredAt int64 `msgpack:"t"`
	Payload  V     `msgpack:"p"`
}

// Options tunes a Freshness cache. Zero values pick the defaults.
type Options struct {
	Name      string
	TTL       time.Duration
	MaxSizeMB int
	Clock     clockwork.Clock
	Metrics   *metrics.Metrics
}

// Freshness stores payloads keyed by (symbol, period) and only returns those
// younger than the TTL. Storage is sharded, so writers for different keys do
// not share a lock. Each Get decodes a fresh copy, so callers own what they
// receive.
type Freshness[V any] struct {
	name    string
	ttl     time.Duration
	clock   clockwork.Clock
	store   *bigcache.BigCache
	metrics *metrics.Metrics
}

func NewFreshness[V any](ctx context.Context, opts Options) (*Freshness[V], error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Name == "" {
		opts.Name = "default"
	}

	// Logical expiry is checked on every Get; bigcache's own window only
	// reclaims memory for entries nobody overwrote.
	cfg := bigcache.DefaultConfig(2 * opts.TTL)
	cfg.CleanWindow = opts.TTL
	cfg.Shards = 256
	cfg.MaxEntriesInWindow = 10_000
	cfg.MaxEntrySize = 1024
	cfg.HardMaxCacheSize = opts.MaxSizeMB
	cfg.Verbose = false

	store, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init %s cache: %w", opts.Name, err)
	}

	return &Freshness[V]{
		name:    opts.Name,
		ttl:     opts.TTL,
		clock:   opts.Clock,
		store:   store,
		metrics: opts.Metrics,
	}, nil
}

func (c *Freshness[V]) TTL() time.Duration { return c.ttl }

// Get returns the payload for key if it is younger than the TTL and records
// the lookup outcome.
func (c *Freshness[V]) Get(key Key) (V, bool) {
	v, result := c.lookup(key)
	c.metrics.CacheLookup(c.name, result)
	return v, result == "hit"
}

// Peek is Get without the lookup metric. Callers that already counted a miss
// for this request use it to re-check before fetching.
func (c *Freshness[V]) Peek(key Key) (V, bool) {
	v, result := c.lookup(key)
	return v, result == "hit"
}

func (c *Freshness[V]) lookup(key Key) (V, string) {
	var zero V

	raw, err := c.store.Get(key.String())
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			log.Warn("cache read failed", "cache", c.name, "key", key.String(), "err", err)
		}
		return zero, "miss"
	}

	var env envelope[V]
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		log.Warn("cache decode failed", "cache", c.name, "key", key.String(), "err", err)
		return zero, "miss"
	}

	if c.clock.Since(time.Unix(0, env.StoredAt)) >= c.ttl {
		return zero, "stale"
	}
	return env.Payload, "hit"
}

// Put stores payload under key stamped with the current time, replacing any
// previous entry. A failed write only costs a future miss, so it is logged.
func (c *Freshness[V]) Put(key Key, payload V) {
	raw, err := msgpack.Marshal(&envelope[V]{
		StoredAt: c.clock.Now().UnixNano(),
		Payload:  payload,
	})
	if err != nil {
		log.Warn("cache encode failed", "cache", c.name, "key", key.String(), "err", err)
		return
	}
	if err := c.store.Set(key.String(), raw); err != nil {
		log.Warn("cache write failed", "cache", c.name, "key", key.String(), "err", err)
	}
}

// Len reports physically stored entries, stale ones included.
func (c *Freshness[V]) Len() int {
	return c.store.Len()
}

func (c *Freshness[V]) Close() error {
	return c.store.Close()
}
