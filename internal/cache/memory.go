package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps entries in process. There is no janitor; go-cache checks
// expiry on read and the entry is dropped then.
type MemoryCache struct {
	store  *gocache.Cache
	prefix string
	ttl    time.Duration
}

func NewMemoryCache(prefix string, ttl time.Duration) *MemoryCache {
	ttl = ttlOr(ttl, DefaultTTL)
	return &MemoryCache{
		store:  gocache.New(ttl, 0),
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *MemoryCache) Get(ctx context.Context, providerID string, input interface{}) (json.RawMessage, bool, error) {
	key, err := Key(c.prefix, providerID, input)
	if err != nil {
		return nil, false, err
	}
	v, ok := c.store.Get(key)
	if !ok {
		c.store.Delete(key)
		return nil, false, nil
	}
	return v.(json.RawMessage), true, nil
}

func (c *MemoryCache) Put(ctx context.Context, providerID string, input interface{}, value json.RawMessage, ttl time.Duration) error {
	key, err := Key(c.prefix, providerID, input)
	if err != nil {
		return err
	}
	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	c.store.Set(key, stored, ttlOr(ttl, c.ttl))
	return nil
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	return c.store.ItemCount()
}
