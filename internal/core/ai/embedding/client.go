package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"meal-analyzer/internal/core/ai/cache"
	"meal-analyzer/internal/infrastructure/config"
	"meal-analyzer/internal/pkg/common"
)

// Embedder 句向量服務介面
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client OpenAI 向量服務客戶端
// 暫時性錯誤以指數退避重試；重試耗盡由呼叫端決定如何降級
type Client struct {
	api        *openai.Client
	model      string
	maxRetries uint64
	timeout    time.Duration
	cache      *cache.VectorCache
}

// NewClient 創建向量服務客戶端
func NewClient(cfg *config.Config, vectorCache *cache.VectorCache) *Client {
	if !cfg.Embedding.CacheVector {
		vectorCache = nil
	}
	return &Client{
		api:        openai.NewClient(cfg.Embedding.APIKey),
		model:      cfg.Embedding.Model,
		maxRetries: cfg.Embedding.MaxRetries,
		timeout:    cfg.Embedding.Timeout,
		cache:      vectorCache,
	}
}

// Embed 計算單一文本的單位向量
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.cache != nil {
		if vector, ok := c.cache.Get(ctx, text); ok {
			return vector, nil
		}
	}

	vectors, err := c.embedWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	vector := normalizeVector(vectors[0])
	if c.cache != nil {
		c.cache.Set(ctx, text, vector)
	}
	return vector, nil
}

// EmbedBatch 批次計算多個文本的單位向量，順序與輸入一致
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := c.embedWithRetry(ctx, texts)
	if err != nil {
		return nil, err
	}

	for i := range vectors {
		vectors[i] = normalizeVector(vectors[i])
	}
	return vectors, nil
}

// embedWithRetry 呼叫向量 API，暫時性錯誤指數退避重試
func (c *Client) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	operation := func() ([][]float32, error) {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		resp, err := c.api.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(c.model),
		})
		if err != nil {
			if !isRetryable(err) {
				return nil, backoff.Permanent(err)
			}
			common.LogWarn("向量服務暫時性錯誤，將重試",
				zap.Error(err),
				zap.Int("batch_size", len(texts)),
			)
			return nil, err
		}

		if len(resp.Data) != len(texts) {
			return nil, backoff.Permanent(fmt.Errorf("embedding response size mismatch: got %d, want %d", len(resp.Data), len(texts)))
		}

		vectors := make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			vectors[i] = d.Embedding
		}
		return vectors, nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	vectors, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		// 呼叫端取消要原樣上拋，不可偽裝成服務不可用而觸發降級
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s", common.ErrEmbeddingUnavailable, err)
	}
	return vectors, nil
}

// isRetryable 限流與服務端錯誤視為暫時性
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	// 非 API 錯誤多為網路問題
	return !errors.Is(err, context.Canceled)
}

// normalizeVector 將向量正規化為單位長度
// 之後的餘弦相似度即可簡化為內積
func normalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	normalized := make([]float32, len(v))
	for i, x := range v {
		normalized[i] = x / norm
	}
	return normalized
}
