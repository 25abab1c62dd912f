package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Embedding   EmbeddingConfig  `mapstructure:"embedding"`
	Catalog     CatalogConfig    `mapstructure:"catalog"`
	Search      SearchConfig     `mapstructure:"search"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Redis       RedisConfig      `mapstructure:"redis"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenRouterConfig 視覺/對話模型配置
type OpenRouterConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// EmbeddingConfig 向量服務配置
type EmbeddingConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	MaxRetries  uint64        `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
	BatchSize   int           `mapstructure:"batch_size"`
	CacheVector bool          `mapstructure:"cache_vector"`
}

// CatalogConfig 食品目錄配置
type CatalogConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// SearchConfig 搜尋與比對配置
// 候選數量、重排序 top-k、接受門檻與詞彙加成皆為可調參數
type SearchConfig struct {
	CandidateLimit      int     `mapstructure:"candidate_limit"`      // 每個檢索策略的候選上限
	RerankTopK          int     `mapstructure:"rerank_top_k"`         // 重排序後保留的候選數
	AcceptanceThreshold float64 `mapstructure:"acceptance_threshold"` // 比對接受門檻（含等於）
	OverlapBonus        float64 `mapstructure:"overlap_bonus"`        // 每個命中詞的加成
	OverlapBonusCap     float64 `mapstructure:"overlap_bonus_cap"`    // 加成上限，0 表示不設限
	ResolveWorkers      int     `mapstructure:"resolve_workers"`      // 同一餐內並行解析的上限
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 配置（向量快取後端）
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	viper.BindEnv("embedding.api_key", "OPENAI_API_KEY")
	viper.BindEnv("embedding.model", "EMBEDDING_MODEL")
	viper.BindEnv("catalog.db_path", "DB_PATH")
	viper.BindEnv("search.acceptance_threshold", "MATCH_THRESHOLD")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration",
		"openrouter_api_key:", maskAPIKey(viper.GetString("openrouter.api_key")),
		"embedding_model:", viper.GetString("embedding.model"),
		"db_path:", viper.GetString("catalog.db_path"))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "meal-analyzer")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// OpenRouter 設定
	viper.SetDefault("openrouter.enabled", false)
	viper.SetDefault("openrouter.model", "openai/gpt-4o")
	viper.SetDefault("openrouter.max_tokens", 1000)
	viper.SetDefault("openrouter.timeout", "60s")

	// 向量服務設定
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.max_retries", 3)
	viper.SetDefault("embedding.timeout", "15s")
	viper.SetDefault("embedding.batch_size", 100)
	viper.SetDefault("embedding.cache_vector", true)

	// 目錄設定
	viper.SetDefault("catalog.db_path", "food.db")

	// 搜尋設定
	viper.SetDefault("search.candidate_limit", 20)
	viper.SetDefault("search.rerank_top_k", 5)
	viper.SetDefault("search.acceptance_threshold", 0.5)
	viper.SetDefault("search.overlap_bonus", 0.05)
	viper.SetDefault("search.overlap_bonus_cap", 0.0)
	viper.SetDefault("search.resolve_workers", 4)

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	// Redis 設定
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 去重設定
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證目錄設定
	if config.Catalog.DBPath == "" {
		return fmt.Errorf("catalog db path is required")
	}

	// 驗證搜尋設定
	if config.Search.CandidateLimit <= 0 {
		return fmt.Errorf("invalid search candidate limit")
	}
	if config.Search.RerankTopK <= 0 {
		return fmt.Errorf("invalid search rerank top k")
	}
	if config.Search.AcceptanceThreshold < 0 || config.Search.AcceptanceThreshold > 1 {
		return fmt.Errorf("acceptance threshold must be within [0, 1]")
	}
	if config.Search.ResolveWorkers <= 0 {
		return fmt.Errorf("invalid resolve workers")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	return nil
}
