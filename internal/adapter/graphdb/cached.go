package graphdb

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/school-risk-service/internal/cache"
	"github.com/couchcryptid/school-risk-service/internal/observability"
)

// CachedClient wraps a Selector with a TTL cache keyed by the exact query text.
type CachedClient struct {
	inner   Selector
	cache   *cache.Cache[BindingSet]
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedClient creates a cache decorator around a selector. The cache is
// owned by the caller so one instance can be shared for the process lifetime.
func NewCachedClient(inner Selector, c *cache.Cache[BindingSet], metrics *observability.Metrics, logger *slog.Logger) *CachedClient {
	if c.Enabled() {
		metrics.CacheEnabled.Set(1)
	} else {
		metrics.CacheEnabled.Set(0)
	}
	return &CachedClient{
		inner:   inner,
		cache:   c,
		metrics: metrics,
		logger:  logger,
	}
}

// Select serves q from the cache when fresh, otherwise queries upstream and
// stores the result. Failed queries are never cached. Concurrent misses for
// the same query each go upstream; the last write wins. The returned rows
// are shared with the cache and must not be modified.
func (c *CachedClient) Select(ctx context.Context, q Query) (BindingSet, error) {
	if rows, ok := c.cache.Get(q.Text); ok {
		c.metrics.CacheLookups.WithLabelValues(string(q.Kind), "hit").Inc()
		return rows, nil
	}
	c.metrics.CacheLookups.WithLabelValues(string(q.Kind), "miss").Inc()

	rows, err := c.inner.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	c.cache.Set(q.Text, rows)
	c.logger.Debug("cached graphdb result", "kind", q.Kind, "rows", len(rows), "ttl", c.cache.TTL())
	return rows, nil
}
