package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuantity(t *testing.T) {
	portion := FoodPortion{ID: 2, GramWeight: 150.0}

	assert.Equal(t, 2.0, NormalizeQuantity(300, portion))
	assert.Equal(t, 0.67, NormalizeQuantity(100, portion))
	assert.Equal(t, 0.0, NormalizeQuantity(100, FoodPortion{GramWeight: 0}))
	assert.Equal(t, 0.0, NormalizeQuantity(100, FoodPortion{GramWeight: -1}))
}

func TestNormalizeQuantityDefaultPortion(t *testing.T) {
	// 預設 100 公克份量下，倍數就是公克數除以 100
	assert.Equal(t, 1.0, NormalizeQuantity(100, DefaultPortion()))
	assert.Equal(t, 0.5, NormalizeQuantity(50, DefaultPortion()))
}

func TestAggregateScalesByPortionWeight(t *testing.T) {
	// 150 克份量、每 100 單位 10 克蛋白質、300 克需求：
	// 倍數 2.0，貢獻 150/100 × 2.0 × 10.0 = 30.0
	ing := AnalysisIngredient{
		Amount:            2.0,
		SelectedPortionID: 2,
		Portions:          []FoodPortion{{ID: 2, GramWeight: 150.0}},
		Nutrients:         NutrientProfile{ProteinInGrams: 10.0},
	}

	totals := Aggregate([]AnalysisIngredient{ing})
	assert.Equal(t, 30.0, totals.ProteinInGrams)
	assert.Equal(t, 0.0, totals.FatInGrams)
}

func TestAggregateSumsAcrossIngredients(t *testing.T) {
	a := AnalysisIngredient{
		Amount:            1.0,
		SelectedPortionID: 1,
		Portions:          []FoodPortion{DefaultPortion()},
		Nutrients:         NutrientProfile{ProteinInGrams: 3.33, IronInMilligrams: 0.1},
	}
	b := AnalysisIngredient{
		Amount:            0.5,
		SelectedPortionID: 1,
		Portions:          []FoodPortion{DefaultPortion()},
		Nutrients:         NutrientProfile{ProteinInGrams: 10.0, IronInMilligrams: 0.2},
	}

	totals := Aggregate([]AnalysisIngredient{a, b})
	assert.Equal(t, 8.33, totals.ProteinInGrams)
	assert.Equal(t, 0.2, totals.IronInMilligrams)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, NutrientProfile{}, Aggregate(nil))
}

func TestSelectedPortionFallback(t *testing.T) {
	portions := []FoodPortion{
		{ID: 3, GramWeight: 30},
		{ID: 5, GramWeight: 55},
	}

	ing := AnalysisIngredient{SelectedPortionID: 5, Portions: portions}
	assert.Equal(t, int64(5), ing.SelectedPortion().ID)

	// 找不到選定 ID 時退回第一個份量
	ing = AnalysisIngredient{SelectedPortionID: 99, Portions: portions}
	assert.Equal(t, int64(3), ing.SelectedPortion().ID)

	// 沒有任何份量時退回預設份量
	ing = AnalysisIngredient{}
	assert.Equal(t, DefaultPortion(), ing.SelectedPortion())
}
