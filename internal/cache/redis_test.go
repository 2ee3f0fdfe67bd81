package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/pkg/config"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{"single part", []string{"index"}},
		{"multiple parts", []string{"index", "page", "2"}},
		{"empty parts", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed := HashKey(tt.parts...)
			assert.Equal(t, hashed, HashKey(tt.parts...), "hash must be stable")
			assert.Len(t, hashed, 32)
		})
	}

	assert.NotEqual(t, HashKey("index", "1"), HashKey("index", "2"))
}

func TestCache_NamespaceKey(t *testing.T) {
	c := &Cache{}

	tests := []struct {
		key      string
		expected string
	}{
		{"test", "yatube:test"},
		{"test:key", "yatube:test:key"},
		{"", "yatube:"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, c.namespaceKey(tt.key))
	}
}

func TestCache_GetSetDelete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "index")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "index", []byte("<html>"), 20*time.Second))
	assert.True(t, mr.Exists("yatube:index"))

	value, ok, err := c.Get(ctx, "index")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("<html>"), value)

	mr.FastForward(21 * time.Second)
	_, ok, err = c.Get(ctx, "index")
	require.NoError(t, err)
	assert.False(t, ok, "entry must expire after its TTL")

	require.NoError(t, c.Set(ctx, "index", []byte("again"), time.Minute))
	require.NoError(t, c.Delete(ctx, "index"))
	assert.False(t, mr.Exists("yatube:index"))

	assert.NoError(t, c.Health(ctx))
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(&config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.False(t, c.Enabled())

	ctx := context.Background()
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	_, ok, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Health(ctx), ErrCacheDisabled)
	assert.NoError(t, c.Close())
}

func TestNew_ConnectsToRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := New(&config.RedisConfig{Enabled: true, URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Close()
	assert.True(t, c.Enabled())
}
