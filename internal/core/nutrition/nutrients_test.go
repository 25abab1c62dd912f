package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapNutrientsBasicFields(t *testing.T) {
	rows := []NutrientRow{
		{Number: 203, Amount: 10.0, Name: "Protein", UnitName: "g"},
		{Number: 205, Amount: 3.6, Name: "Carbohydrate, by difference", UnitName: "g"},
		{Number: 204, Amount: 0.4, Name: "Total lipid (fat)", UnitName: "g"},
		{Number: 291, Amount: 0.0, Name: "Fiber, total dietary", UnitName: "g"},
		{Number: 303, Amount: 0.04, Name: "Iron, Fe", UnitName: "mg"},
		{Number: 309, Amount: 0.52, Name: "Zinc, Zn", UnitName: "mg"},
		{Number: 401, Amount: 0.8, Name: "Vitamin C", UnitName: "mg"},
		{Number: 320, Amount: 1.0, Name: "Vitamin A, RAE", UnitName: "ug"},
		{Number: 323, Amount: 0.01, Name: "Vitamin E", UnitName: "mg"},
		{Number: 317, Amount: 9.7, Name: "Selenium, Se", UnitName: "ug"},
		{Number: 504, Amount: 0.9, Name: "Leucine", UnitName: "g"},
	}

	profile := MapNutrients(rows, FoodRecord{})

	assert.Equal(t, 10.0, profile.ProteinInGrams)
	assert.Equal(t, 3.6, profile.CarbohydratesInGrams)
	assert.Equal(t, 0.4, profile.FatInGrams)
	assert.Equal(t, 0.0, profile.FiberInGrams)
	assert.Equal(t, 0.04, profile.IronInMilligrams)
	assert.Equal(t, 0.52, profile.ZincInMilligrams)
	assert.Equal(t, 0.8, profile.VitaminCInMilligrams)
	assert.Equal(t, 1.0, profile.VitaminAInMicrograms)
	assert.Equal(t, 0.01, profile.VitaminEInMilligrams)
	assert.Equal(t, 9.7, profile.SeleniumInMicrograms)
	assert.Equal(t, 0.9, profile.LeucineInGrams)
}

func TestMapNutrientsOmega3Accumulates(t *testing.T) {
	// 三種脂肪酸代碼應累加，而非互相覆寫
	rows := []NutrientRow{
		{Number: 851, Amount: 0.1},
		{Number: 629, Amount: 0.2},
		{Number: 621, Amount: 0.05},
	}

	profile := MapNutrients(rows, FoodRecord{})
	assert.InDelta(t, 0.35, profile.Omega3sInGrams, 1e-9)
}

func TestMapNutrientsIgnoresUnknownCodes(t *testing.T) {
	rows := []NutrientRow{
		{Number: 208, Amount: 52.0, Name: "Energy", UnitName: "kcal"},
		{Number: 203, Amount: 1.1},
	}

	profile := MapNutrients(rows, FoodRecord{})
	assert.Equal(t, 1.1, profile.ProteinInGrams)
	assert.Equal(t, NutrientProfile{ProteinInGrams: 1.1}, profile)
}

func TestMapNutrientsFermentedServings(t *testing.T) {
	size := 150.0
	profile := MapNutrients(nil, FoodRecord{FermentedServingSize: &size})
	assert.Equal(t, 0.67, profile.FermentedFoodServings)

	zero := 0.0
	profile = MapNutrients(nil, FoodRecord{FermentedServingSize: &zero})
	assert.Equal(t, 0.0, profile.FermentedFoodServings)

	profile = MapNutrients(nil, FoodRecord{})
	assert.Equal(t, 0.0, profile.FermentedFoodServings)
}

func TestMapNutrientsCollagen(t *testing.T) {
	collagen := 2.5
	profile := MapNutrients(nil, FoodRecord{Collagen: &collagen})
	assert.Equal(t, 2.5, profile.CollagenInGrams)
}

func TestDefaultPortion(t *testing.T) {
	p := DefaultPortion()
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, 100.0, p.GramWeight)
	assert.Equal(t, 100.0, p.Amount)
	assert.Equal(t, "grams", p.Modifier)
}

func TestEnsurePortions(t *testing.T) {
	got := EnsurePortions(nil)
	require.Len(t, got, 1)
	assert.Equal(t, DefaultPortion(), got[0])

	existing := []FoodPortion{{ID: 7, GramWeight: 30}}
	assert.Equal(t, existing, EnsurePortions(existing))
}

func TestTrackedNutrientNumbers(t *testing.T) {
	numbers := TrackedNutrientNumbers()
	assert.Len(t, numbers, 14)
	assert.Contains(t, numbers, 203)
	assert.Contains(t, numbers, 851)
	assert.Contains(t, numbers, 621)
	assert.Contains(t, numbers, 629)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.67, Round2(100.0/150.0))
	assert.Equal(t, 2.0, Round2(2.0))
	assert.Equal(t, 1.5, Round2(1.499999999999))
	assert.Equal(t, 0.0, Round2(0.0))
}
