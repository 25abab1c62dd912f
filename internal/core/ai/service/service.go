package service

import (
	"context"
	"strings"

	"meal-analyzer/internal/core/ai/cache"
	openrouter "meal-analyzer/internal/core/service"
	"meal-analyzer/internal/infrastructure/config"
)

// Response AI 回應結構
type Response struct {
	Content string
}

// Service AI 服務
// 統一包裝對話/視覺模型的呼叫並套上回應快取
type Service struct {
	config       *config.Config
	openRouter   *openrouter.OpenRouterService
	cacheManager *cache.CacheManager
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, cacheManager *cache.CacheManager) (*Service, error) {
	return &Service{
		config:       cfg,
		openRouter:   openrouter.NewOpenRouterService(cfg),
		cacheManager: cacheManager,
	}, nil
}

// ProcessRequest 統一對外方法
// imageData 為空時是純文字請求
func (s *Service) ProcessRequest(ctx context.Context, prompt string, imageData string) (*Response, error) {
	// 統一 prompt 格式，去除多餘空白，確保快取 key 一致
	prompt = strings.Join(strings.Fields(strings.TrimSpace(prompt)), " ")

	cachePayload := prompt + "\x00" + imageData

	// 檢查緩存
	if s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, "ai", cachePayload); err == nil && val != "" {
			return &Response{Content: val}, nil
		}
	}

	content, err := s.openRouter.GenerateResponse(ctx, prompt, imageData)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		_ = s.cacheManager.Set(ctx, "ai", cachePayload, content)
	}

	return &Response{Content: content}, nil
}
