package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"meal-analyzer/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// OpenRouterService 視覺/對話模型客戶端
// 負責圖片食材擷取與未比對食材的營養估計後備
type OpenRouterService struct {
	config *config.Config
	client *resty.Client
}

// NewOpenRouterService 創建 OpenRouter 服務
func NewOpenRouterService(cfg *config.Config) *OpenRouterService {
	client := resty.New().
		SetBaseURL("https://openrouter.ai/api/v1").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("X-Title", "Meal Analyzer").
		SetTimeout(cfg.OpenRouter.Timeout)

	return &OpenRouterService{
		config: cfg,
		client: client,
	}
}

// GenerateResponse 生成回應
// imageData 為空時是純文字請求，否則附上圖片做視覺分析
func (s *OpenRouterService) GenerateResponse(ctx context.Context, prompt string, imageData string) (string, error) {
	// 壓縮提示詞的多餘空白，確保快取鍵一致
	simplePrompt := strings.Join(strings.Fields(strings.TrimSpace(prompt)), " ")

	msgContent := []map[string]interface{}{
		{
			"type": "text",
			"text": simplePrompt,
		},
	}
	if imageData != "" {
		url := imageData
		if !strings.HasPrefix(imageData, "data:image/") && !strings.HasPrefix(imageData, "http") {
			url = fmt.Sprintf("data:image/jpeg;base64,%s", imageData)
		}
		msgContent = append(msgContent, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]string{
				"url": url,
			},
		})
	}

	// 構建請求
	req := map[string]interface{}{
		"model": s.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": msgContent,
			},
		},
		"max_tokens": s.config.OpenRouter.MaxTokens,
	}

	// 發送請求
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API returned error: %s", resp.String())
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	return result.Choices[0].Message.Content, nil
}
