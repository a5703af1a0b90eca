package content

import (
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"sitecms/internal/domain/entity"
	"sitecms/internal/observability/metrics"
)

// publicCache holds public read results for a short TTL. Keys are prefixed
// with the record kind so a mutation can drop everything for that kind.
//
// Each kind carries a generation bumped on invalidation. A fill started
// before a mutation sees a stale generation and is discarded.
type publicCache struct {
	items *ttlcache.Cache[string, any]

	mu  sync.Mutex
	gen map[entity.Kind]uint64
}

func newPublicCache(ttl time.Duration) *publicCache {
	if ttl <= 0 {
		return nil
	}
	return &publicCache{
		items: ttlcache.New[string, any](
			ttlcache.WithTTL[string, any](ttl),
			ttlcache.WithDisableTouchOnHit[string, any](),
		),
		gen: make(map[entity.Kind]uint64),
	}
}

func cacheKey(kind entity.Kind, key string) string {
	return kind.String() + ":" + key
}

// get returns the cached value and the kind's generation, which the caller
// hands back to set after reading the store.
func (c *publicCache) get(kind entity.Kind, key string) (any, uint64, bool) {
	if c == nil {
		return nil, 0, false
	}
	c.mu.Lock()
	gen := c.gen[kind]
	c.mu.Unlock()

	item := c.items.Get(cacheKey(kind, key))
	metrics.RecordPublicCache(item != nil)
	if item == nil {
		return nil, gen, false
	}
	return item.Value(), gen, true
}

func (c *publicCache) set(kind entity.Kind, key string, v any, gen uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[kind] != gen {
		return
	}
	c.items.Set(cacheKey(kind, key), v, ttlcache.DefaultTTL)
}

func (c *publicCache) invalidate(kind entity.Kind) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen[kind]++
	prefix := kind.String() + ":"
	for _, k := range c.items.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.items.Delete(k)
		}
	}
}
