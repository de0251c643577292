// internal/cache/cache.go
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"driftaway/internal/common/config"
	"driftaway/internal/common/database"
)

const DefaultTTL = time.Hour

// Cache memoizes provider results by (provider id, canonical input).
// Implementations are safe for concurrent use. Expired entries are misses.
type Cache interface {
	Get(ctx context.Context, providerID string, input interface{}) (json.RawMessage, bool, error)
	Put(ctx context.Context, providerID string, input interface{}, value json.RawMessage, ttl time.Duration) error
}

// New builds the backend selected by cfg. The redis client is only used for
// the redis backend.
func New(cfg config.CacheConfig, rdb *database.RedisClient) (Cache, error) {
	ttl := cfg.CacheTTL()
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(cfg.KeyPrefix, ttl), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("cache: redis backend requires a redis client")
		}
		return NewRedisCache(rdb.Client, cfg.KeyPrefix, ttl), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}

// Key derives the storage key for input under providerID. Inputs that encode
// to the same JSON document, regardless of object key order, share a key.
func Key(prefix, providerID string, input interface{}) (string, error) {
	canonical, err := Canonicalize(input)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return prefix + providerID + ":" + hex.EncodeToString(sum[:]), nil
}

// Canonicalize renders input as JSON with object keys sorted at every depth
// and numbers kept in their literal form.
func Canonicalize(input interface{}) ([]byte, error) {
	var raw []byte
	switch v := input.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("cache: encode input: %w", err)
		}
		raw = b
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("cache: decode input: %w", err)
	}
	return json.Marshal(generic)
}

func ttlOr(ttl, fallback time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultTTL
}
