package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meal-analyzer/internal/api/handlers/health"
	mealHandler "meal-analyzer/internal/api/handlers/meal"
	"meal-analyzer/internal/api/middleware"
	"meal-analyzer/internal/core/ai/cache"
	"meal-analyzer/internal/core/ai/embedding"
	"meal-analyzer/internal/core/ai/service"
	"meal-analyzer/internal/core/catalog"
	mealService "meal-analyzer/internal/core/meal"
	"meal-analyzer/internal/core/search"
	"meal-analyzer/internal/infrastructure/config"
	"meal-analyzer/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (10MB)
	maxBodySize = 10 << 20
)

// SetupRouter 設置路由
// 依序初始化快取、向量服務、解析器與餐點服務，再掛載路由與中間件
func SetupRouter(ctx context.Context, cfg *config.Config, store *catalog.Store, cacheManager *cache.CacheManager, vectorCache *cache.VectorCache) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 重複請求過濾
	router.Use(middleware.Deduplication(cfg))

	// 速率限制
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化 AI 服務
	aiService, err := service.NewService(cfg, cacheManager)
	if err != nil || aiService == nil {
		common.LogError("Failed to initialize AI service", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize AI service: %w", err)
	}

	// 初始化向量服務
	embedder := embedding.NewClient(cfg, vectorCache)

	// 初始化食材解析器（啟動時掃描目錄建立模糊比對表）
	resolver, err := search.NewResolver(ctx, store, embedder, cfg.Search)
	if err != nil {
		common.LogError("Failed to initialize resolver", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize resolver: %w", err)
	}

	// 初始化餐點服務
	mealSvc := mealService.NewMealService(aiService, resolver)
	if mealSvc == nil {
		common.LogError("Failed to initialize meal service")
		return nil, fmt.Errorf("failed to initialize meal service")
	}

	// 全局中間件：設置請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck(cfg, store))
	router.GET("/ready", health.ReadinessCheck(store))
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		// 餐點影像分析
		api.POST("/meal", mealHandler.HandleAnalyzeMeal(mealSvc))

		// 食材清單重新分析
		api.POST("/ingredients", mealHandler.HandleAnalyzeIngredients(mealSvc))

		// 單一食材查詢
		api.POST("/search", mealHandler.HandleSearchFood(mealSvc))
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Float64("acceptance_threshold", resolver.Threshold()),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
