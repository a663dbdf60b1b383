package extract

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// Cached memoises Extract per calendar day, so relative dates never go stale.
type Cached struct {
	inner *Extractor
	cache *lru.Cache[string, material.Criteria]
}

// NewCached wraps inner with an LRU of the given size.
func NewCached(inner *Extractor, size int) (*Cached, error) {
	cache, err := lru.New[string, material.Criteria](size)
	if err != nil {
		return nil, fmt.Errorf("create extraction cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Extract returns a copy of the memoised criteria; callers may mutate it freely.
func (c *Cached) Extract(text string) material.Criteria {
	key := c.inner.now().UTC().Format(time.DateOnly) + "\x00" + text
	if hit, ok := c.cache.Get(key); ok {
		return hit.Clone()
	}
	out := c.inner.Extract(text)
	c.cache.Add(key, out.Clone())
	return out
}
