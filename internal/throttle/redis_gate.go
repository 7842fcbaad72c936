package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// reserveScript stores the next free start time (unix ms) per symbol and
// returns how many milliseconds the caller has to wait for it.
var reserveScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local gap = tonumber(ARGV[2])
local last = tonumber(redis.call("GET", KEYS[1]) or "0")
local nextStart = now
if last + gap > now then
  nextStart = last + gap
end
redis.call("SET", KEYS[1], nextStart, "PX", (nextStart - now) + gap)
return nextStart - now
`)

// RedisGate shares throttle reservations between replicas through Redis.
type RedisGate struct {
	client redis.Scripter
	prefix string
	clock  clockwork.Clock
}

func NewRedisGate(client redis.Scripter, prefix string, clock clockwork.Clock) *RedisGate {
	if prefix == "" {
		prefix = "livedata:throttle:"
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RedisGate{client: client, prefix: prefix, clock: clock}
}

func (g *RedisGate) Reserve(ctx context.Context, symbol string, gap time.Duration) (time.Duration, error) {
	now := g.clock.Now().UnixMilli()
	waitMs, err := reserveScript.Run(ctx, g.client, []string{g.prefix + symbol}, now, gap.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("reserve %s: %w", symbol, err)
	}
	if waitMs < 0 {
		waitMs = 0
	}
	return time.Duration(waitMs) * time.Millisecond, nil
}
