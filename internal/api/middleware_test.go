// internal/api/middleware_test.go
package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPLimiters_SeparateBucketsPerClient(t *testing.T) {
	store := newIPLimiters(0.001, 1, time.Minute)

	assert.True(t, store.get("10.0.0.1").Allow())
	assert.False(t, store.get("10.0.0.1").Allow())
	assert.True(t, store.get("10.0.0.2").Allow())
	assert.Equal(t, 2, store.limiters.ItemCount())
}

func TestIPLimiters_EvictsIdleClients(t *testing.T) {
	store := newIPLimiters(0.001, 1, 20*time.Millisecond)

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		assert.True(t, store.get(ip).Allow())
	}
	assert.False(t, store.get("10.0.0.1").Allow())

	time.Sleep(60 * time.Millisecond)
	store.limiters.DeleteExpired()
	assert.Equal(t, 0, store.limiters.ItemCount())

	// an evicted client starts again with a full bucket
	assert.True(t, store.get("10.0.0.1").Allow())
	assert.Equal(t, 1, store.limiters.ItemCount())
}
