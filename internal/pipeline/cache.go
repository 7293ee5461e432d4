package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/lagoon-weather-risk/internal/domain"
	"github.com/couchcryptid/lagoon-weather-risk/internal/observability"
)

// CachingTransformer wraps a Transformer with an in-memory LRU cache. Entries
// are keyed by payload hash, target date and the current hour, so a replayed
// forecast is assessed once per hour.
type CachingTransformer struct {
	inner   Transformer
	cache   *lru.Cache[string, domain.Assessment]
	metrics *observability.Metrics
}

// NewCachingTransformer creates a cache decorator around a transformer.
// A non-positive maxEntries keeps a single entry.
func NewCachingTransformer(inner Transformer, maxEntries int, metrics *observability.Metrics) *CachingTransformer {
	cache, _ := lru.New[string, domain.Assessment](max(maxEntries, 1)) //nolint:errcheck
	return &CachingTransformer{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}
}

func (c *CachingTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Assessment, error) {
	key := cacheKey(raw, domain.Now())
	if a, ok := c.cache.Get(key); ok {
		c.metrics.AssessCache.WithLabelValues("hit").Inc()
		return a, nil
	}
	c.metrics.AssessCache.WithLabelValues("miss").Inc()

	a, err := c.inner.Transform(ctx, raw)
	if err != nil {
		return a, err
	}
	c.cache.Add(key, a)
	return a, nil
}

// Len returns the number of cached assessments.
func (c *CachingTransformer) Len() int {
	return c.cache.Len()
}

func cacheKey(raw domain.RawEvent, now time.Time) string {
	sum := sha256.Sum256(raw.Value)
	return hex.EncodeToString(sum[:]) + "|" + raw.Headers[TargetDateHeader] + "|" + raw.Headers[ExcludePastHeader] + "|" + now.UTC().Truncate(time.Hour).Format("2006-01-02T15")
}
