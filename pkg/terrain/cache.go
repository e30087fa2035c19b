package terrain

import (
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"glidecore/pkg/geo"
)

// cellDegrees is the key resolution of the cache, roughly 100 m.
const cellDegrees = 0.001

type cellKey struct{ lat, lon int32 }

// Cached memoises another HeightGetter per small grid cell. Errors are not
// cached.
type Cached struct {
	src   HeightGetter
	cache *expirable.LRU[cellKey, float64]
}

// NewCached wraps src with an LRU of size entries that expire after ttl.
func NewCached(src HeightGetter, size int, ttl time.Duration) *Cached {
	if size <= 0 {
		size = 4096
	}
	return &Cached{
		src:   src,
		cache: expirable.NewLRU[cellKey, float64](size, nil, ttl),
	}
}

// Height returns the cached elevation of p's cell, querying src on a miss.
func (c *Cached) Height(p geo.Point) (float64, error) {
	k := cellKey{
		lat: int32(math.Round(p.Lat / cellDegrees)),
		lon: int32(math.Round(p.Lon / cellDegrees)),
	}
	if h, ok := c.cache.Get(k); ok {
		return h, nil
	}
	h, err := c.src.Height(p)
	if err != nil {
		return 0, err
	}
	c.cache.Add(k, h)
	return h, nil
}

// Len is the number of cached cells.
func (c *Cached) Len() int { return c.cache.Len() }
