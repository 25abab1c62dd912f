package nutrition

import "math"

// 營養素代碼（USDA nutrient number）
const (
	codeProtein  = 203
	codeFat      = 204
	codeCarbs    = 205
	codeFiber    = 291
	codeIron     = 303
	codeZinc     = 309
	codeVitaminE = 323
	codeVitaminA = 320
	codeVitaminC = 401
	codeSelenium = 317
	codeLeucine  = 504
	// 三種脂肪酸代碼共同累加到 omega-3
	codeOmega3ALA = 851
	codeOmega3DHA = 621
	codeOmega3EPA = 629
)

// nutrientTarget 描述一個代碼寫入 NutrientProfile 的哪個欄位
type nutrientTarget struct {
	field      func(*NutrientProfile) *float64
	accumulate bool // 多列累加而非覆寫
}

// nutrientCodes 代碼到欄位的靜態對照表
// 新增營養素只需加一列，不需改流程
var nutrientCodes = map[int]nutrientTarget{
	codeProtein:  {field: func(p *NutrientProfile) *float64 { return &p.ProteinInGrams }},
	codeLeucine:  {field: func(p *NutrientProfile) *float64 { return &p.LeucineInGrams }},
	codeCarbs:    {field: func(p *NutrientProfile) *float64 { return &p.CarbohydratesInGrams }},
	codeFat:      {field: func(p *NutrientProfile) *float64 { return &p.FatInGrams }},
	codeIron:     {field: func(p *NutrientProfile) *float64 { return &p.IronInMilligrams }},
	codeZinc:     {field: func(p *NutrientProfile) *float64 { return &p.ZincInMilligrams }},
	codeFiber:    {field: func(p *NutrientProfile) *float64 { return &p.FiberInGrams }},
	codeVitaminC: {field: func(p *NutrientProfile) *float64 { return &p.VitaminCInMilligrams }},
	codeVitaminA: {field: func(p *NutrientProfile) *float64 { return &p.VitaminAInMicrograms }},
	codeVitaminE: {field: func(p *NutrientProfile) *float64 { return &p.VitaminEInMilligrams }},
	codeSelenium: {field: func(p *NutrientProfile) *float64 { return &p.SeleniumInMicrograms }},

	codeOmega3ALA: {field: func(p *NutrientProfile) *float64 { return &p.Omega3sInGrams }, accumulate: true},
	codeOmega3DHA: {field: func(p *NutrientProfile) *float64 { return &p.Omega3sInGrams }, accumulate: true},
	codeOmega3EPA: {field: func(p *NutrientProfile) *float64 { return &p.Omega3sInGrams }, accumulate: true},
}

// TrackedNutrientNumbers 返回目前追蹤的所有營養素代碼
func TrackedNutrientNumbers() []int {
	numbers := make([]int, 0, len(nutrientCodes))
	for code := range nutrientCodes {
		numbers = append(numbers, code)
	}
	return numbers
}

// MapNutrients 將營養素列映射為標準化的營養組成
// 表中沒有的代碼一律忽略；缺漏的欄位保持 0
// 發酵食品份數與膠原蛋白來自食品紀錄本身，而非營養素列
func MapNutrients(rows []NutrientRow, record FoodRecord) NutrientProfile {
	var profile NutrientProfile

	for _, row := range rows {
		target, ok := nutrientCodes[row.Number]
		if !ok {
			continue
		}
		field := target.field(&profile)
		if target.accumulate {
			*field += row.Amount
		} else {
			*field = row.Amount
		}
	}

	if record.FermentedServingSize != nil && *record.FermentedServingSize != 0 {
		profile.FermentedFoodServings = Round2(100 / *record.FermentedServingSize)
	}
	if record.Collagen != nil {
		profile.CollagenInGrams = *record.Collagen
	}

	return profile
}

// DefaultPortion 合成的 100 公克預設份量
// 目錄中沒有份量資料的紀錄一律以此代替
func DefaultPortion() FoodPortion {
	return FoodPortion{
		ID:         1,
		GramWeight: 100.0,
		Amount:     100.0,
		Modifier:   "grams",
	}
}

// EnsurePortions 保證份量列表非空
func EnsurePortions(portions []FoodPortion) []FoodPortion {
	if len(portions) == 0 {
		return []FoodPortion{DefaultPortion()}
	}
	return portions
}

// Round2 四捨五入到小數點後兩位
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
