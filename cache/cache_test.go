package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	key := Key("packages", "/api/packages?page=2")
	assert.Equal(t, "public:packages:/api/packages?page=2", key)
	assert.True(t, strings.HasPrefix(key, ResourcePrefix("packages")))
	assert.False(t, strings.HasPrefix(Key("faqs", "/api/faqs"), ResourcePrefix("packages")))
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}

	assert.NoError(t, c.Set(ctx, "k", []byte("v")))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, c.InvalidatePrefix(ctx, "k"))
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-redis-url", 0)
	assert.Error(t, err)
}
