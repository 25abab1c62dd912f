package nutrition

// profileFields 總計時逐欄位累加用的選擇器
var profileFields = []func(*NutrientProfile) *float64{
	func(p *NutrientProfile) *float64 { return &p.ProteinInGrams },
	func(p *NutrientProfile) *float64 { return &p.LeucineInGrams },
	func(p *NutrientProfile) *float64 { return &p.CarbohydratesInGrams },
	func(p *NutrientProfile) *float64 { return &p.Omega3sInGrams },
	func(p *NutrientProfile) *float64 { return &p.FatInGrams },
	func(p *NutrientProfile) *float64 { return &p.IronInMilligrams },
	func(p *NutrientProfile) *float64 { return &p.ZincInMilligrams },
	func(p *NutrientProfile) *float64 { return &p.FermentedFoodServings },
	func(p *NutrientProfile) *float64 { return &p.FiberInGrams },
	func(p *NutrientProfile) *float64 { return &p.CollagenInGrams },
	func(p *NutrientProfile) *float64 { return &p.VitaminCInMilligrams },
	func(p *NutrientProfile) *float64 { return &p.VitaminAInMicrograms },
	func(p *NutrientProfile) *float64 { return &p.VitaminEInMilligrams },
	func(p *NutrientProfile) *float64 { return &p.SeleniumInMicrograms },
}

// NormalizeQuantity 將要求的公克數換算為選定份量的倍數
func NormalizeQuantity(requestedGrams float64, portion FoodPortion) float64 {
	if portion.GramWeight <= 0 {
		return 0
	}
	return Round2(requestedGrams / portion.GramWeight)
}

// scale 返回該食材的換算係數：份量克重/100 × 份量倍數
// 營養素值以每 100 單位為基準，乘上此係數即為實際貢獻
func scale(ing AnalysisIngredient) float64 {
	return ing.SelectedPortion().GramWeight / 100.0 * ing.Amount
}

// Aggregate 將多個食材的營養貢獻加總為一餐的總計
// 每個欄位的總和四捨五入到小數點後兩位
func Aggregate(ingredients []AnalysisIngredient) NutrientProfile {
	var totals NutrientProfile

	for _, ing := range ingredients {
		s := scale(ing)
		nutrients := ing.Nutrients
		for _, field := range profileFields {
			*field(&totals) += s * *field(&nutrients)
		}
	}

	for _, field := range profileFields {
		*field(&totals) = Round2(*field(&totals))
	}

	return totals
}
