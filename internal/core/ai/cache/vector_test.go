package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-analyzer/internal/infrastructure/config"
)

func testVectorConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			Enabled: true,
			MaxSize: 2,
			TTL:     time.Minute,
		},
		Redis: config.RedisConfig{Enabled: false},
	}
}

func TestVectorCacheSetGet(t *testing.T) {
	vc := NewVectorCache(testVectorConfig())
	defer vc.Close()
	ctx := context.Background()

	vc.Set(ctx, "greek yogurt", []float32{0.6, 0.8})

	got, ok := vc.Get(ctx, "greek yogurt")
	require.True(t, ok)
	assert.Equal(t, []float32{0.6, 0.8}, got)

	_, ok = vc.Get(ctx, "never cached")
	assert.False(t, ok)
}

func TestVectorCacheExpiry(t *testing.T) {
	cfg := testVectorConfig()
	cfg.Cache.TTL = time.Minute
	vc := NewVectorCache(cfg)
	defer vc.Close()
	vc.ttl = -time.Second // 寫入即過期

	ctx := context.Background()
	vc.Set(ctx, "greek yogurt", []float32{1, 0})

	_, ok := vc.Get(ctx, "greek yogurt")
	assert.False(t, ok)
	assert.Empty(t, vc.local)
}

func TestVectorCacheBounded(t *testing.T) {
	vc := NewVectorCache(testVectorConfig()) // max 2
	defer vc.Close()
	ctx := context.Background()

	// 寫入超過容量上限的條目，map 不得無限增長
	for i := 0; i < 10; i++ {
		vc.Set(ctx, fmt.Sprintf("term-%d", i), []float32{float32(i)})
	}
	assert.LessOrEqual(t, len(vc.local), 2)
}

func TestVectorCacheEvictsLeastRecentlyUsed(t *testing.T) {
	vc := NewVectorCache(testVectorConfig()) // max 2
	defer vc.Close()
	ctx := context.Background()

	vc.Set(ctx, "a", []float32{1})
	time.Sleep(time.Millisecond)
	vc.Set(ctx, "b", []float32{2})
	time.Sleep(time.Millisecond)

	// a 被讀過，lastAccess 較新，c 寫入時應淘汰 b
	_, ok := vc.Get(ctx, "a")
	require.True(t, ok)

	vc.Set(ctx, "c", []float32{3})

	_, ok = vc.Get(ctx, "b")
	assert.False(t, ok)
	_, ok = vc.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = vc.Get(ctx, "c")
	assert.True(t, ok)
}

func TestVectorCacheDefaultBounds(t *testing.T) {
	cfg := testVectorConfig()
	cfg.Cache.MaxSize = 0
	cfg.Cache.TTL = 0

	vc := NewVectorCache(cfg)
	defer vc.Close()
	assert.Equal(t, defaultVectorCacheSize, vc.maxSize)
	assert.Equal(t, 24*time.Hour, vc.ttl)
}
