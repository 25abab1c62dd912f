package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "food.db", cfg.Catalog.DBPath)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, uint64(3), cfg.Embedding.MaxRetries)
	assert.Equal(t, 100, cfg.Embedding.BatchSize)

	assert.Equal(t, 20, cfg.Search.CandidateLimit)
	assert.Equal(t, 5, cfg.Search.RerankTopK)
	assert.Equal(t, 0.5, cfg.Search.AcceptanceThreshold)
	assert.Equal(t, 0.05, cfg.Search.OverlapBonus)
	assert.Equal(t, 0.0, cfg.Search.OverlapBonusCap)
	assert.Equal(t, 4, cfg.Search.ResolveWorkers)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Second, cfg.DedupWindow)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "0.72")
	t.Setenv("DB_PATH", "/data/catalog.db")
	t.Setenv("EMBEDDING_MODEL", "text-embedding-3-large")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 0.72, cfg.Search.AcceptanceThreshold)
	assert.Equal(t, "/data/catalog.db", cfg.Catalog.DBPath)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedding.Model)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Catalog: CatalogConfig{DBPath: "food.db"},
			Search: SearchConfig{
				CandidateLimit:      20,
				RerankTopK:          5,
				AcceptanceThreshold: 0.5,
				ResolveWorkers:      4,
			},
		}
	}

	assert.NoError(t, validateConfig(base()))

	cfg := base()
	cfg.Catalog.DBPath = ""
	assert.Error(t, validateConfig(cfg))

	cfg = base()
	cfg.Search.AcceptanceThreshold = 1.5
	assert.Error(t, validateConfig(cfg))

	cfg = base()
	cfg.Search.ResolveWorkers = 0
	assert.Error(t, validateConfig(cfg))

	cfg = base()
	cfg.Cache.Enabled = true
	assert.Error(t, validateConfig(cfg), "enabled cache requires size and ttl")
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefgwxyz"))
}
