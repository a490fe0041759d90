package providers

import (
	"dailytrack/internal/structures"
	"strings"
)

// MetricsCacheProvider counts hits and misses per rendered view. Keys are
// expected as "<revision>:<view>[:<params>]".
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits(cacheView(key))
	} else {
		c.metrics.IncCacheMisses(cacheView(key))
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *MetricsCacheProvider) Clear() {
	c.inner.Clear()
}

// cacheView extracts the view label from a revision-salted cache key.
func cacheView(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 || parts[1] == "" {
		return "other"
	}
	return parts[1]
}

// NewInstrumentedCacheProvider wraps the view cache with hit/miss counters.
// A disabled cache is returned unwrapped so it does not report misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
