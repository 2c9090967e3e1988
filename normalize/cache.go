package normalize

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

const DefaultCacheSize = 8192

// CachedStreet memoizes normalized street names. Exports contain the same
// street names many times (every house number of a street repeats it).
type CachedStreet struct {
	street *Street
	cache  *lru.Cache[string, string]
}

func NewCachedStreet(street *Street, size int) (*CachedStreet, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating street name cache")
	}
	return &CachedStreet{street: street, cache: cache}, nil
}

func (c *CachedStreet) Normalize(name string) string {
	if normalized, ok := c.cache.Get(name); ok {
		return normalized
	}
	normalized := c.street.Normalize(name)
	c.cache.Add(name, normalized)
	return normalized
}

// Len returns the number of cached names.
func (c *CachedStreet) Len() int {
	return c.cache.Len()
}
