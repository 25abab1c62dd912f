package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"meal-analyzer/internal/core/ai/embedding"
	"meal-analyzer/internal/core/catalog"
	"meal-analyzer/internal/pkg/common"
)

// ScoredCandidate 帶相似度的候選
type ScoredCandidate struct {
	catalog.Entry
	Similarity float64 `json:"similarity"`
}

// Reranker 語意重排序器
// 以查詢向量與候選向量的內積評分，再加上詞彙重疊加成
type Reranker struct {
	store    *catalog.Store
	embedder embedding.Embedder
	bonus    float64 // 每個命中詞的加成
	bonusCap float64 // 加成上限，0 表示不設限
}

// NewReranker 創建語意重排序器
func NewReranker(store *catalog.Store, embedder embedding.Embedder, bonus, bonusCap float64) *Reranker {
	return &Reranker{
		store:    store,
		embedder: embedder,
		bonus:    bonus,
		bonusCap: bonusCap,
	}
}

// Rerank 對候選集合做語意重排序，返回前 topK 名
// 排序穩定：同分候選保持原有檢索順序，結果可重現
//
// 向量服務重試耗盡時整體降級為 token-sort 評分，
// 單一候選缺向量則記 0 分後照常加成，兩者都不中斷流程
func (r *Reranker) Rerank(ctx context.Context, term string, candidates []catalog.Entry, topK int) ([]ScoredCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	queryVector, err := r.embedder.Embed(ctx, term)
	if err != nil {
		if errors.Is(err, common.ErrEmbeddingUnavailable) {
			common.LogWarn("向量服務不可用，降級為詞彙評分",
				zap.String("term", term),
				zap.Error(err),
			)
			return r.rankLexicalOnly(term, candidates, topK), nil
		}
		return nil, fmt.Errorf("failed to embed query term: %w", err)
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		vector, ok, err := r.store.LookupEmbedding(ctx, c.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to look up candidate embedding: %w", err)
		}

		// 舊目錄條目可能沒有向量：相似度記 0，不排除也不失敗
		similarity := 0.0
		if ok {
			similarity = dotProduct(queryVector, vector)
		}
		similarity += r.overlapBonus(term, c.NormalizedDescription)

		scored = append(scored, ScoredCandidate{Entry: c, Similarity: similarity})
	}

	return topRanked(scored, topK), nil
}

// rankLexicalOnly 向量服務整體不可用時的降級排序
func (r *Reranker) rankLexicalOnly(term string, candidates []catalog.Entry, topK int) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		similarity := tokenSortScore(term, c.NormalizedDescription) + r.overlapBonus(term, c.NormalizedDescription)
		scored = append(scored, ScoredCandidate{Entry: c, Similarity: similarity})
	}
	return topRanked(scored, topK)
}

// overlapBonus 每個查詢詞若逐字出現在候選描述中即加成
// 純向量相似度容易低估品牌名與 raw/cooked 這類修飾詞的精確命中
func (r *Reranker) overlapBonus(term, description string) float64 {
	bonus := 0.0
	for _, word := range strings.Fields(term) {
		if strings.Contains(description, word) {
			bonus += r.bonus
		}
	}
	if r.bonusCap > 0 && bonus > r.bonusCap {
		bonus = r.bonusCap
	}
	return bonus
}

// topRanked 穩定排序後取前 topK 名
func topRanked(scored []ScoredCandidate, topK int) []ScoredCandidate {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if topK > 0 && topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}

// dotProduct 兩個單位向量的內積即餘弦相似度
func dotProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
