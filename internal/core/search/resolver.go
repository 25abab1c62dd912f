package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"meal-analyzer/internal/core/ai/embedding"
	"meal-analyzer/internal/core/catalog"
	"meal-analyzer/internal/core/nutrition"
	"meal-analyzer/internal/infrastructure/config"
	"meal-analyzer/internal/pkg/common"
)

// Resolver 食材解析器
// 把自由文字的食材名稱與公克數解析為量化的營養紀錄：
// 候選檢索 → 語意重排序 → 門檻把關 → 營養素/份量映射
type Resolver struct {
	store     *catalog.Store
	retriever *Retriever
	reranker  *Reranker
	cfg       config.SearchConfig
}

// NewResolver 創建食材解析器
// 啟動時掃描一次目錄建立模糊比對表
func NewResolver(ctx context.Context, store *catalog.Store, embedder embedding.Embedder, cfg config.SearchConfig) (*Resolver, error) {
	entries, err := store.ScanDescriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build fuzzy index: %w", err)
	}

	fuzzyIndex := NewFuzzyIndex(entries)
	common.LogInfo("模糊比對表已建立", zap.Int("catalog_size", fuzzyIndex.Size()))

	return &Resolver{
		store:     store,
		retriever: NewRetriever(store, fuzzyIndex, cfg.CandidateLimit),
		reranker:  NewReranker(store, embedder, cfg.OverlapBonus, cfg.OverlapBonusCap),
		cfg:       cfg,
	}, nil
}

// Threshold 返回目前的接受門檻
func (r *Resolver) Threshold() float64 {
	return r.cfg.AcceptanceThreshold
}

// Resolve 解析單一食材
// 查無候選或最佳候選低於門檻時返回 Unmatched 結果而非錯誤；
// 候選指向的紀錄在主表中不存在才是硬錯誤（索引與主表漂移）
func (r *Resolver) Resolve(ctx context.Context, term string, quantityGrams float64) (nutrition.Resolution, error) {
	normalized := catalog.NormalizeText(term)
	unmatched := nutrition.Resolution{
		Unmatched: &nutrition.UnmatchedIngredient{Name: term, QuantityInGrams: quantityGrams},
	}

	candidates, err := r.retriever.Candidates(ctx, normalized)
	if err != nil {
		return nutrition.Resolution{}, err
	}
	if len(candidates) == 0 {
		common.LogInfo("查無候選", zap.String("term", term))
		return unmatched, nil
	}

	ranked, err := r.reranker.Rerank(ctx, normalized, candidates, r.cfg.RerankTopK)
	if err != nil {
		return nutrition.Resolution{}, err
	}

	// 只看最高分候選；門檻為含等於
	best := ranked[0]
	if best.Similarity < r.cfg.AcceptanceThreshold {
		common.LogInfo("最佳候選低於接受門檻",
			zap.String("term", term),
			zap.String("best", best.Description),
			zap.Float64("similarity", best.Similarity),
			zap.Float64("threshold", r.cfg.AcceptanceThreshold),
		)
		return unmatched, nil
	}

	ingredient, err := r.buildIngredient(ctx, best, quantityGrams)
	if err != nil {
		return nutrition.Resolution{}, err
	}

	common.LogInfo("食材比對成功",
		zap.String("term", term),
		zap.String("matched", ingredient.Description),
		zap.Float64("similarity", best.Similarity),
		zap.Float64("amount", ingredient.Amount),
	)
	return nutrition.Resolution{Ingredient: &ingredient}, nil
}

// buildIngredient 將接受的候選展開為完整的解析結果
func (r *Resolver) buildIngredient(ctx context.Context, best ScoredCandidate, quantityGrams float64) (nutrition.AnalysisIngredient, error) {
	record, err := r.store.LookupRecord(ctx, best.ID())
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			// 搜尋索引找得到但主表沒有：資料完整性故障，不可當成未比對
			return nutrition.AnalysisIngredient{}, fmt.Errorf("%w: record %d/%s in index but not in base table",
				common.ErrDataIntegrity, best.FDCID, best.DataType)
		}
		return nutrition.AnalysisIngredient{}, err
	}

	rows, err := r.store.LookupNutrients(ctx, record.FDCID)
	if err != nil {
		return nutrition.AnalysisIngredient{}, err
	}

	portions, err := r.store.LookupPortions(ctx, record.FDCID)
	if err != nil {
		return nutrition.AnalysisIngredient{}, err
	}
	portions = nutrition.EnsurePortions(portions)

	// 未指定時選用列表中的第一個份量
	selected := portions[0]

	return nutrition.AnalysisIngredient{
		FDCID:             record.FDCID,
		DataType:          record.DataType,
		Description:       record.Description,
		Amount:            nutrition.NormalizeQuantity(quantityGrams, selected),
		SelectedPortionID: selected.ID,
		Portions:          portions,
		Nutrients:         nutrition.MapNutrients(rows, record),
	}, nil
}

// AnalyzeMeal 解析一餐的所有食材並加總營養
// 各食材獨立解析、並行執行；未比對者單獨回報，不拖垮整餐
func (r *Resolver) AnalyzeMeal(ctx context.Context, name string, items []common.ExtractedIngredient) (nutrition.AnalysisMeal, error) {
	resolutions := make([]nutrition.Resolution, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.ResolveWorkers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			resolution, err := r.Resolve(gctx, item.Name, item.QuantityInGrams)
			if err != nil {
				return fmt.Errorf("failed to resolve %q: %w", item.Name, err)
			}
			resolutions[i] = resolution
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nutrition.AnalysisMeal{}, err
	}

	meal := nutrition.AnalysisMeal{Name: name}
	for _, res := range resolutions {
		if res.Matched() {
			meal.Ingredients = append(meal.Ingredients, *res.Ingredient)
		} else {
			meal.Unmatched = append(meal.Unmatched, *res.Unmatched)
		}
	}
	meal.Totals = nutrition.Aggregate(meal.Ingredients)

	return meal, nil
}
