package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"meal-analyzer/internal/core/catalog"
)

func TestOverlapBonus(t *testing.T) {
	r := &Reranker{bonus: 0.05}

	assert.InDelta(t, 0.10, r.overlapBonus("greek yogurt", "yogurt greek plain nonfat"), 1e-9)
	assert.InDelta(t, 0.05, r.overlapBonus("greek cheese", "yogurt greek plain nonfat"), 1e-9)
	assert.Equal(t, 0.0, r.overlapBonus("beef", "yogurt greek plain nonfat"))
}

func TestOverlapBonusCap(t *testing.T) {
	r := &Reranker{bonus: 0.05, bonusCap: 0.05}

	// 兩個詞都命中，但加成受上限約束
	assert.InDelta(t, 0.05, r.overlapBonus("greek yogurt", "yogurt greek plain nonfat"), 1e-9)
}

func TestTopRankedStableOrder(t *testing.T) {
	a := ScoredCandidate{Entry: catalog.Entry{FDCID: 1}, Similarity: 0.8}
	b := ScoredCandidate{Entry: catalog.Entry{FDCID: 2}, Similarity: 0.8}
	c := ScoredCandidate{Entry: catalog.Entry{FDCID: 3}, Similarity: 0.9}

	ranked := topRanked([]ScoredCandidate{a, b, c}, 0)
	assert.Equal(t, int64(3), ranked[0].FDCID)
	// 同分候選保持原有順序
	assert.Equal(t, int64(1), ranked[1].FDCID)
	assert.Equal(t, int64(2), ranked[2].FDCID)
}

func TestTopRankedLimit(t *testing.T) {
	scored := []ScoredCandidate{
		{Entry: catalog.Entry{FDCID: 1}, Similarity: 0.1},
		{Entry: catalog.Entry{FDCID: 2}, Similarity: 0.3},
		{Entry: catalog.Entry{FDCID: 3}, Similarity: 0.2},
	}

	ranked := topRanked(scored, 2)
	assert.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].FDCID)
	assert.Equal(t, int64(3), ranked[1].FDCID)
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 1.0, dotProduct([]float32{0.6, 0.8}, []float32{0.6, 0.8}), 1e-6)
	assert.InDelta(t, 0.0, dotProduct([]float32{1, 0}, []float32{0, 1}), 1e-6)
	// 維度不一致時記 0 分
	assert.Equal(t, 0.0, dotProduct([]float32{1, 0}, []float32{1}))
}

func TestTokenSortScoreWordOrderInvariant(t *testing.T) {
	assert.Equal(t, 1.0, tokenSortScore("breast chicken grilled", "grilled chicken breast"))
	assert.Greater(t, tokenSortScore("greek yogurt", "yogurt greek plain nonfat"), 0.5)
	assert.Less(t, tokenSortScore("beef steak", "yogurt greek plain nonfat"), 0.3)
}

func TestFuzzyIndexTopMatches(t *testing.T) {
	entries := []catalog.Entry{
		{FDCID: 1, NormalizedDescription: "yogurt plain whole milk"},
		{FDCID: 2, NormalizedDescription: "yogurt greek plain nonfat"},
		{FDCID: 3, NormalizedDescription: "chicken breast meat only raw"},
	}
	idx := NewFuzzyIndex(entries)
	assert.Equal(t, 3, idx.Size())

	matches := idx.TopMatches("greek yogurt", 2)
	assert.Len(t, matches, 2)
	assert.Equal(t, int64(2), matches[0].FDCID)

	// limit 超過條目數時返回全部
	assert.Len(t, idx.TopMatches("yogurt", 10), 3)
}
