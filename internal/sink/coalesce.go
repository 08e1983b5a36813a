package sink

import (
	"context"
	"time"

	"github.com/bluele/gcache"

	"github.com/oshokin/alarm-node/internal/domain/home"
)

// Coalescing drops a push when the same value was delivered for the same
// parameter less than ttl ago. After ttl the value is delivered again, so a
// remote mirror that lost an update still converges.
type Coalescing struct {
	next  Sink
	cache gcache.Cache
}

var _ Sink = (*Coalescing)(nil)

// CoalesceOption tunes the cache.
type CoalesceOption func(*gcache.CacheBuilder)

// WithClock replaces the cache clock, used by tests.
func WithClock(clock gcache.Clock) CoalesceOption {
	return func(b *gcache.CacheBuilder) {
		b.Clock(clock)
	}
}

// NewCoalescing wraps next. A non-positive ttl forwards every push.
func NewCoalescing(next Sink, ttl time.Duration, opts ...CoalesceOption) *Coalescing {
	c := &Coalescing{next: next}
	if ttl <= 0 {
		return c
	}

	builder := gcache.New(len(home.Params())).LRU().Expiration(ttl)
	for _, opt := range opts {
		opt(builder)
	}

	c.cache = builder.Build()

	return c
}

// Push implements Sink.
func (c *Coalescing) Push(ctx context.Context, param home.Param, value any) error {
	if c.cache == nil {
		return c.next.Push(ctx, param, value)
	}

	if cached, err := c.cache.Get(param); err == nil && cached == value {
		return nil
	}

	// Cached before forwarding so a delivery failure reported while next.Push
	// runs finds the entry to forget.
	//nolint:errcheck // Set only fails for a nil loader, which is not used.
	c.cache.Set(param, value)

	if err := c.next.Push(ctx, param, value); err != nil {
		c.cache.Remove(param)
		return err
	}

	return nil
}

// Forget drops the cached value of param if it still equals value, so the
// next push is delivered. Sinks that confirm delivery later call it on failure.
func (c *Coalescing) Forget(param home.Param, value any) {
	if c.cache == nil {
		return
	}

	if cached, err := c.cache.Get(param); err == nil && cached == value {
		c.cache.Remove(param)
	}
}
