package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"meal-analyzer/internal/infrastructure/config"
	"meal-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

const defaultVectorCacheSize = 1000

// localVector 程序內後備快取的一個條目
type localVector struct {
	vector     []float32
	expiresAt  time.Time
	lastAccess time.Time
}

// VectorCache 查詢向量快取
// 同一查詢詞在一餐內常重複出現，快取可省下大量向量 API 呼叫
// 有 Redis 時跨程序共享，否則退回程序內 map（同樣受 TTL 與容量上限約束）
type VectorCache struct {
	client  *redis.Client
	ttl     time.Duration
	maxSize int

	mu    sync.Mutex
	local map[string]localVector
}

// NewVectorCache 創建向量快取
// Redis 連不上時記錄警告並退回程序內快取，不阻斷啟動
func NewVectorCache(cfg *config.Config) *VectorCache {
	maxSize := cfg.Cache.MaxSize
	if maxSize <= 0 {
		maxSize = defaultVectorCacheSize
	}
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	vc := &VectorCache{
		ttl:     ttl,
		maxSize: maxSize,
		local:   make(map[string]localVector),
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			common.LogWarn("Redis 連線失敗，改用程序內向量快取",
				zap.Error(err),
				zap.String("addr", cfg.Redis.Addr),
			)
		} else {
			vc.client = client
			common.LogInfo("向量快取使用 Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	return vc
}

// Get 獲取快取的向量
func (c *VectorCache) Get(ctx context.Context, text string) ([]float32, bool) {
	key := c.generateKey(text)

	if c.client != nil {
		data, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var vector []float32
			if err := json.Unmarshal(data, &vector); err == nil {
				return vector, true
			}
		} else if err != redis.Nil {
			common.LogWarn("向量快取讀取失敗", zap.Error(err))
		}
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.local[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.local, key)
		return nil, false
	}
	entry.lastAccess = time.Now()
	c.local[key] = entry
	return entry.vector, true
}

// Set 寫入向量快取
func (c *VectorCache) Set(ctx context.Context, text string, vector []float32) {
	key := c.generateKey(text)

	if c.client != nil {
		data, err := json.Marshal(vector)
		if err != nil {
			return
		}
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			common.LogWarn("向量快取寫入失敗", zap.Error(err))
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// 查詢詞來自使用者輸入，程序內快取必須設上限
	if len(c.local) >= c.maxSize {
		c.evictLocal()
	}

	now := time.Now()
	c.local[key] = localVector{
		vector:     vector,
		expiresAt:  now.Add(c.ttl),
		lastAccess: now,
	}
}

// evictLocal 先清過期條目，容量仍滿則淘汰最久未使用者，呼叫端需持有鎖
func (c *VectorCache) evictLocal() {
	now := time.Now()
	for key, entry := range c.local {
		if now.After(entry.expiresAt) {
			delete(c.local, key)
		}
	}
	if len(c.local) < c.maxSize {
		return
	}

	var oldestKey string
	var oldestAccess time.Time
	for key, entry := range c.local {
		if oldestKey == "" || entry.lastAccess.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = entry.lastAccess
		}
	}
	if oldestKey != "" {
		delete(c.local, oldestKey)
	}
}

// Close 關閉快取後端
func (c *VectorCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// generateKey 生成快取鍵
func (c *VectorCache) generateKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s", hex.EncodeToString(hash[:]))
}
