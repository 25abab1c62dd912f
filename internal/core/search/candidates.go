package search

import (
	"context"
	"fmt"

	"meal-analyzer/internal/core/catalog"
	"meal-analyzer/internal/core/nutrition"
)

// Retriever 候選檢索器
// 全文檢索偏好精確詞彙命中，模糊比對撿回詞序重排與近似拼寫；
// 兩者聯集先衝召回率，精確度交給後面的語意重排序
type Retriever struct {
	store *catalog.Store
	fuzzy *FuzzyIndex
	limit int // 每個策略的候選上限
}

// NewRetriever 創建候選檢索器
func NewRetriever(store *catalog.Store, fuzzy *FuzzyIndex, limit int) *Retriever {
	return &Retriever{
		store: store,
		fuzzy: fuzzy,
		limit: limit,
	}
}

// Candidates 取得查詢詞的候選集合
// 兩個策略的結果依先後順序合併，以複合識別鍵去重
func (r *Retriever) Candidates(ctx context.Context, term string) ([]catalog.Entry, error) {
	lexical, err := r.store.LexicalSearch(ctx, term, r.limit)
	if err != nil {
		return nil, fmt.Errorf("lexical search failed: %w", err)
	}

	fuzzyMatches := r.fuzzy.TopMatches(term, r.limit)

	seen := make(map[nutrition.RecordID]struct{}, len(lexical)+len(fuzzyMatches))
	candidates := make([]catalog.Entry, 0, len(lexical)+len(fuzzyMatches))
	for _, e := range append(lexical, fuzzyMatches...) {
		key := e.ID()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, e)
	}

	return candidates, nil
}
