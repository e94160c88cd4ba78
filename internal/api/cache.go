package api

import (
	"net/url"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Tag groups cached responses so a mutation can drop everything it affects.
type Tag string

const (
	TagUser        Tag = "User"
	TagUsers       Tag = "Users"
	TagQuestions   Tag = "Questions"
	TagAssessment  Tag = "Assessment"
	TagCertificate Tag = "Certificate"
	TagAnalytics   Tag = "Analytics"
	TagSupervisor  Tag = "Supervisor"
)

// Cache holds successful GET bodies. A zero TTL disables it.
type Cache struct {
	mu   sync.Mutex
	ttl  time.Duration
	c    *cache.Cache
	tags map[Tag]map[string]struct{}
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{}
	}
	return &Cache{ttl: ttl, c: cache.New(ttl, 2*ttl), tags: map[Tag]map[string]struct{}{}}
}

func cacheKey(path string, q url.Values) string {
	if len(q) == 0 {
		return "GET " + path
	}
	return "GET " + path + "?" + q.Encode()
}

func (c *Cache) Get(key string) ([]byte, bool) {
	if c.c == nil {
		return nil, false
	}
	v, ok := c.c.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (c *Cache) Set(key string, body []byte, tags ...Tag) {
	if c.c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.c.Set(key, body, cache.DefaultExpiration)
	for _, t := range tags {
		keys := c.tags[t]
		if keys == nil {
			keys = map[string]struct{}{}
			c.tags[t] = keys
		}
		keys[key] = struct{}{}
	}
}

func (c *Cache) Invalidate(tags ...Tag) {
	if c.c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tags {
		for k := range c.tags[t] {
			c.c.Delete(k)
		}
		delete(c.tags, t)
	}
}

// Flush drops everything; used whenever the signed-in identity changes.
func (c *Cache) Flush() {
	if c.c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.c.Flush()
	c.tags = map[Tag]map[string]struct{}{}
}

func (c *Cache) Len() int {
	if c.c == nil {
		return 0
	}
	return c.c.ItemCount()
}
