package health

import (
	"net/http"
	"runtime"
	"time"

	"meal-analyzer/internal/core/catalog"
	"meal-analyzer/internal/infrastructure/config"
	"meal-analyzer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Catalog   *CatalogStatus         `json:"catalog,omitempty"`
}

// CatalogStatus 食品目錄狀態
type CatalogStatus struct {
	Reachable bool   `json:"reachable"`
	Path      string `json:"path"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(cfg *config.Config, store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		catalogStatus := &CatalogStatus{Path: cfg.Catalog.DBPath}
		if err := store.DB().PingContext(c.Request.Context()); err != nil {
			common.LogError("目錄資料庫連線檢查失敗", zap.Error(err))
		} else {
			catalogStatus.Reachable = true
		}

		status := "ok"
		httpStatus := http.StatusOK
		if !catalogStatus.Reachable {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   cfg.App.Version,
			Runtime: map[string]interface{}{
				"goroutines": runtime.NumGoroutine(),
				"alloc_mb":   memStats.Alloc / 1024 / 1024,
				"sys_mb":     memStats.Sys / 1024 / 1024,
				"num_gc":     memStats.NumGC,
				"go_version": runtime.Version(),
			},
			Catalog: catalogStatus,
		})
	}
}

// ReadinessCheck 就緒檢查處理器
// 目錄資料庫可查詢才算就緒
func ReadinessCheck(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.DB().PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}
