package throttle

import (
	"context"
	"sync"
	"time"

	"investor-livedata/internal/metrics"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

// DefaultGap is the minimum spacing between two upstream requests for the
// same symbol.
const DefaultGap = 2 * time.Second

// Gate coordinates reservations with other processes. It returns how long the
// caller must wait before its slot opens.
type Gate interface {
	Reserve(ctx context.Context, symbol string, gap time.Duration) (time.Duration, error)
}

type symbolState struct {
	mu   sync.Mutex
	last time.Time
	seen bool
}

// Throttle spaces upstream requests per symbol. Distinct symbols never wait
// on each other.
type Throttle struct {
	gap     time.Duration
	clock   clockwork.Clock
	gate    Gate
	metrics *metrics.Metrics
	states  sync.Map // symbol -> *symbolState
}

type Option func(*Throttle)

func WithClock(c clockwork.Clock) Option {
	return func(t *Throttle) { t.clock = c }
}

// WithGate adds a shared reservation store. Its wait is combined with the
// local one and the longer of the two wins.
func WithGate(g Gate) Option {
	return func(t *Throttle) { t.gate = g }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Throttle) { t.metrics = m }
}

func New(gap time.Duration, opts ...Option) *Throttle {
	if gap < 0 {
		gap = 0
	}
	t := &Throttle{gap: gap, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Throttle) Gap() time.Duration { return t.gap }

// reserve claims the next start slot for symbol and returns the wait until
// that slot. Claims are recorded at reservation time, so concurrent callers
// queue up one gap apart.
func (t *Throttle) reserve(symbol string) time.Duration {
	v, _ := t.states.LoadOrStore(symbol, &symbolState{})
	st := v.(*symbolState)

	st.mu.Lock()
	defer st.mu.Unlock()

	now := t.clock.Now()
	next := now
	if st.seen {
		if earliest := st.last.Add(t.gap); earliest.After(now) {
			next = earliest
		}
	}
	st.last = next
	st.seen = true
	return next.Sub(now)
}

// Acquire blocks until a request for symbol may start. The slot stays claimed
// even if ctx ends first.
func (t *Throttle) Acquire(ctx context.Context, symbol string) error {
	wait := t.reserve(symbol)

	if t.gate != nil {
		remote, err := t.gate.Reserve(ctx, symbol, t.gap)
		if err != nil {
			log.Warn("shared throttle unavailable, using local state", "symbol", symbol, "err", err)
		} else if remote > wait {
			wait = remote
		}
	}

	t.metrics.ThrottleWait(wait)
	if wait <= 0 {
		return ctx.Err()
	}
	log.Debug("throttling request", "symbol", symbol, "wait", wait)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.clock.After(wait):
		return nil
	}
}
