package meal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"meal-analyzer/internal/core/ai/service"
	"meal-analyzer/internal/core/nutrition"
	"meal-analyzer/internal/core/search"
	"meal-analyzer/internal/pkg/common"
)

// MealService 餐點分析服務
// 視覺模型負責從圖片擷取食材與份量，解析器負責比對與營養計算
type MealService struct {
	aiService *service.Service
	resolver  *search.Resolver
}

// NewMealService 創建餐點分析服務
func NewMealService(aiService *service.Service, resolver *search.Resolver) *MealService {
	return &MealService{
		aiService: aiService,
		resolver:  resolver,
	}
}

// AnalyzeImage 分析餐點圖片
// 擷取出的每個食材逐一比對參考目錄，最後加總為一餐的營養
func (s *MealService) AnalyzeImage(ctx context.Context, imageData string, descriptionHint string) (nutrition.AnalysisMeal, error) {
	extraction, err := s.ExtractIngredients(ctx, imageData, descriptionHint)
	if err != nil {
		return nutrition.AnalysisMeal{}, err
	}

	return s.resolver.AnalyzeMeal(ctx, extraction.Title, extraction.Ingredients)
}

// ExtractIngredients 呼叫視覺模型擷取圖片中的食材與份量
func (s *MealService) ExtractIngredients(ctx context.Context, imageData string, descriptionHint string) (common.MealExtraction, error) {
	common.LogInfo("開始擷取餐點食材",
		zap.String("description_hint", descriptionHint),
	)

	prompt := fmt.Sprintf(`You are a nutrition expert and computer vision assistant.
Analyze this image and follow these steps:
1. Identify each visible food item.
2. Give the meal a short title of less than 5 words that describes its contents (ground beef bowl, chicken salad, etc). If it is a single food item, return ONLY the name of the food (apple, banana, etc).
3. Estimate the quantity of each item and convert it to grams.
4. ONLY respond with a JSON object following this format exactly:
{"title":"Chicken salad","ingredients":[{"name":"grilled chicken breast","quantity_in_grams":120.0},{"name":"sauerkraut","quantity_in_grams":30.0}]}
5. If there are no food items in the image, return this EXACT object:
{"title":"Unknown","ingredients":[]}
%s`, descriptionHint)

	response, err := s.aiService.ProcessRequest(ctx, prompt, imageData)
	if err != nil {
		common.LogError("視覺模型請求失敗", zap.Error(err))
		return common.MealExtraction{}, fmt.Errorf("vision extraction failed: %w", err)
	}

	var extraction common.MealExtraction
	raw := common.ExtractJSONCodeBlock(response.Content)
	if err := common.ParseJSON(raw, &extraction); err != nil {
		common.LogError("視覺模型回應解析失敗",
			zap.Error(err),
			zap.String("raw", raw),
		)
		return common.MealExtraction{}, fmt.Errorf("failed to parse vision response: %w", err)
	}

	common.LogInfo("餐點食材擷取完成",
		zap.String("title", extraction.Title),
		zap.Int("ingredient_count", len(extraction.Ingredients)),
	)
	return extraction, nil
}

// AnalyzeIngredients 分析使用者編輯後的食材清單
func (s *MealService) AnalyzeIngredients(ctx context.Context, name string, items []common.ExtractedIngredient) (nutrition.AnalysisMeal, error) {
	return s.resolver.AnalyzeMeal(ctx, name, items)
}

// ResolveIngredient 解析單一食材
func (s *MealService) ResolveIngredient(ctx context.Context, term string, quantityGrams float64) (nutrition.Resolution, error) {
	return s.resolver.Resolve(ctx, term, quantityGrams)
}

// EstimateUnmatched 為未比對的食材向 LLM 要一份營養估計
// 僅作後備：估計值帶有不確定性，由呼叫端決定是否採用
func (s *MealService) EstimateUnmatched(ctx context.Context, items []nutrition.UnmatchedIngredient) (*common.EstimatedNutrients, error) {
	if len(items) == 0 {
		return nil, nil
	}

	asExtracted := make([]common.ExtractedIngredient, len(items))
	for i, item := range items {
		asExtracted[i] = common.ExtractedIngredient{Name: item.Name, QuantityInGrams: item.QuantityInGrams}
	}
	list := common.FormatExtractedIngredients(asExtracted)

	prompt := fmt.Sprintf(`Based on these ingredients, give me a nutrient analysis:
%s
ONLY respond with a JSON object following this format exactly:
{"protein_in_grams":0.0,"collagen_in_grams":0.0,"leucine_in_grams":0.0,"carbohydrates_in_grams":0.0,"omega3s_in_grams":0.0,"fat_in_grams":0.0,"zinc_in_milligrams":0.0,"iron_in_milligrams":0.0,"fermented_food_servings":0.0,"fiber_in_grams":0.0}`, list)

	response, err := s.aiService.ProcessRequest(ctx, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("nutrient estimation failed: %w", err)
	}

	var estimated common.EstimatedNutrients
	raw := common.ExtractJSONCodeBlock(response.Content)
	if err := common.ParseJSON(raw, &estimated); err != nil {
		return nil, fmt.Errorf("failed to parse nutrient estimation: %w", err)
	}

	return &estimated, nil
}
