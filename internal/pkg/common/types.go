package common

import (
	"fmt"
	"strings"
)

// ExtractedIngredient 視覺模型從圖片中擷取出的食材
// 份量一律由上游換算為公克
type ExtractedIngredient struct {
	Name            string  `json:"name"`              // 食材名稱（自由文字）
	QuantityInGrams float64 `json:"quantity_in_grams"` // 份量（公克）
}

// MealExtraction 視覺模型的整餐擷取結果
type MealExtraction struct {
	Title       string                `json:"title"`       // 餐點名稱（五個字以內）
	Ingredients []ExtractedIngredient `json:"ingredients"` // 擷取出的食材列表
}

// EstimatedNutrients 由 LLM 合成的營養估計值
// 僅在目錄中查無對應食材時作為後備使用
type EstimatedNutrients struct {
	ProteinInGrams        float64 `json:"protein_in_grams"`
	CollagenInGrams       float64 `json:"collagen_in_grams"`
	LeucineInGrams        float64 `json:"leucine_in_grams"`
	CarbohydratesInGrams  float64 `json:"carbohydrates_in_grams"`
	Omega3sInGrams        float64 `json:"omega3s_in_grams"`
	FatInGrams            float64 `json:"fat_in_grams"`
	ZincInMilligrams      float64 `json:"zinc_in_milligrams"`
	IronInMilligrams      float64 `json:"iron_in_milligrams"`
	FermentedFoodServings float64 `json:"fermented_food_servings"`
	FiberInGrams          float64 `json:"fiber_in_grams"`
}

// FormatExtractedIngredients 將擷取出的食材格式化為提示詞片段
func FormatExtractedIngredients(ingredients []ExtractedIngredient) string {
	var sb strings.Builder
	for _, ing := range ingredients {
		sb.WriteString(fmt.Sprintf("- %s: %.1fg\n", ing.Name, ing.QuantityInGrams))
	}
	return sb.String()
}
