package search

import (
	"sort"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"meal-analyzer/internal/core/catalog"
)

// FuzzyIndex 模糊比對用的目錄描述表
// 啟動時從目錄掃描建立一次，之後所有請求共用唯讀，
// 不在每次查詢時重新撈取整個目錄
type FuzzyIndex struct {
	entries []catalog.Entry
}

// NewFuzzyIndex 以目錄條目建立模糊比對表
func NewFuzzyIndex(entries []catalog.Entry) *FuzzyIndex {
	return &FuzzyIndex{entries: entries}
}

// Size 返回表中的條目數
func (idx *FuzzyIndex) Size() int {
	return len(idx.entries)
}

// TopMatches 對整個描述表計算 token-sort 相似度，取前 limit 名
// token-sort 對詞序重排容忍，"breast chicken grilled" 能對上 "grilled chicken breast"
func (idx *FuzzyIndex) TopMatches(term string, limit int) []catalog.Entry {
	type scored struct {
		entry catalog.Entry
		score int
	}

	results := make([]scored, 0, len(idx.entries))
	for _, e := range idx.entries {
		results = append(results, scored{
			entry: e,
			score: fuzzy.TokenSortRatio(term, e.NormalizedDescription),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if limit > len(results) {
		limit = len(results)
	}
	matches := make([]catalog.Entry, 0, limit)
	for _, r := range results[:limit] {
		matches = append(matches, r.entry)
	}
	return matches
}

// tokenSortScore 將 token-sort 相似度換算到 [0, 1]
// 向量服務完全不可用時以此作為降級評分
func tokenSortScore(term, description string) float64 {
	return float64(fuzzy.TokenSortRatio(term, description)) / 100.0
}
