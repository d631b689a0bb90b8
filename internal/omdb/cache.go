package omdb

import (
	"context"
	"maps"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/iliyamo/movie-watchlist/internal/metrics"
)

// CachedClient keeps recent FetchByID payloads in memory. Only found
// movies are cached; searches always go to OMDb.
type CachedClient struct {
	*Client
	details *expirable.LRU[string, map[string]any]
}

// NewCachedClient wraps c with an LRU of at most size entries, each kept
// for ttl.
func NewCachedClient(c *Client, size int, ttl time.Duration) *CachedClient {
	if size < 1 {
		size = 1
	}
	return &CachedClient{
		Client:  c,
		details: expirable.NewLRU[string, map[string]any](size, nil, ttl),
	}
}

// FetchByID serves the payload from memory when present. Callers get their
// own copy of the map.
func (c *CachedClient) FetchByID(ctx context.Context, imdbID string) (map[string]any, bool, error) {
	if data, ok := c.details.Get(imdbID); ok {
		metrics.CacheHits.WithLabelValues("lru").Inc()
		return maps.Clone(data), true, nil
	}
	metrics.CacheMisses.WithLabelValues("lru").Inc()

	data, found, err := c.Client.FetchByID(ctx, imdbID)
	if err != nil || !found {
		return data, found, err
	}
	c.details.Add(imdbID, maps.Clone(data))
	return data, true, nil
}
