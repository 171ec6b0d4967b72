package features

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Extractor turns a token into its feature vector.
type Extractor interface {
	Extract(name string) Vector
}

// Func adapts a plain extraction function to the Extractor interface.
type Func func(name string) Vector

func (f Func) Extract(name string) Vector { return f(name) }

// Default is the uncached extractor.
var Default Extractor = Func(Extract)

// Cache memoizes Extract by token. Datasets repeat names across classes and
// the classify command re-extracts the same names, so the vector is computed
// once per token. Cache is safe for concurrent use.
type Cache struct {
	c *cache.Cache
}

// NewCache returns a Cache whose entries live for ttl. A ttl of zero keeps
// entries until Flush.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{c: cache.New(cache.NoExpiration, 0)}
	}
	return &Cache{c: cache.New(ttl, 2*ttl)}
}

// Extract returns a copy of the cached vector for name, computing it on miss.
func (c *Cache) Extract(name string) Vector {
	if v, ok := c.c.Get(name); ok {
		return clone(v.(Vector))
	}
	v := Extract(name)
	c.c.SetDefault(name, v)
	return clone(v)
}

// Len reports the number of cached tokens.
func (c *Cache) Len() int { return c.c.ItemCount() }

// Flush drops every cached vector.
func (c *Cache) Flush() { c.c.Flush() }

func clone(v Vector) Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}
