package nutrition

// RecordID 食品紀錄的複合識別鍵
type RecordID struct {
	FDCID    int64  `json:"fdc_id"`
	DataType string `json:"data_type"`
}

// FoodRecord 食品目錄中的一筆參考紀錄
// 由離線匯入流程建立，執行期唯讀
type FoodRecord struct {
	FDCID                 int64    `json:"fdc_id"`
	DataType              string   `json:"data_type"`
	Description           string   `json:"description"`
	NormalizedDescription string   `json:"normalized_description"` // 小寫、去標點、空白壓縮
	FermentedServingSize  *float64 `json:"fermented_food_serving_size"`
	Collagen              *float64 `json:"collagen"`
}

// ID 返回紀錄的複合識別鍵
func (r FoodRecord) ID() RecordID {
	return RecordID{FDCID: r.FDCID, DataType: r.DataType}
}

// NutrientRow 食品的單一營養素列
// 數值以每 100 單位為基準
type NutrientRow struct {
	Number   int     `json:"number"` // 營養素代碼
	Amount   float64 `json:"amount"`
	Name     string  `json:"name"`
	UnitName string  `json:"unit_name"`
}

// FoodPortion 食品的份量定義
type FoodPortion struct {
	ID         int64   `json:"id"`
	GramWeight float64 `json:"gram_weight"`
	Amount     float64 `json:"amount"`
	Modifier   string  `json:"modifier"` // cup、slice 等
}

// NutrientProfile 標準化後的營養組成，每欄以每 100 單位為基準
type NutrientProfile struct {
	ProteinInGrams        float64 `json:"protein_in_grams"`
	LeucineInGrams        float64 `json:"leucine_in_grams"`
	CarbohydratesInGrams  float64 `json:"carbohydrates_in_grams"`
	Omega3sInGrams        float64 `json:"omega3s_in_grams"`
	FatInGrams            float64 `json:"fat_in_grams"`
	IronInMilligrams      float64 `json:"iron_in_milligrams"`
	ZincInMilligrams      float64 `json:"zinc_in_milligrams"`
	FermentedFoodServings float64 `json:"fermented_food_servings"`
	FiberInGrams          float64 `json:"fiber_in_grams"`
	CollagenInGrams       float64 `json:"collagen_in_grams"`
	VitaminCInMilligrams  float64 `json:"vitamin_c_in_milligrams"`
	VitaminAInMicrograms  float64 `json:"vitamin_a_in_micrograms"`
	VitaminEInMilligrams  float64 `json:"vitamin_e_in_milligrams"`
	SeleniumInMicrograms  float64 `json:"selenium_in_micrograms"`
}

// AnalysisIngredient 成功比對後的食材解析結果，建立後不再修改
type AnalysisIngredient struct {
	FDCID             int64           `json:"fdc_id"`
	DataType          string          `json:"data_type"`
	Description       string          `json:"description"`
	Amount            float64         `json:"amount"` // 以選定份量為單位的倍數
	SelectedPortionID int64           `json:"selected_portion_id"`
	Portions          []FoodPortion   `json:"portions"`
	Nutrients         NutrientProfile `json:"nutrients"`
}

// SelectedPortion 返回選定的份量；找不到時退回第一個份量
func (i AnalysisIngredient) SelectedPortion() FoodPortion {
	for _, p := range i.Portions {
		if p.ID == i.SelectedPortionID {
			return p
		}
	}
	if len(i.Portions) > 0 {
		return i.Portions[0]
	}
	return DefaultPortion()
}

// UnmatchedIngredient 無法比對的食材，保留原始名稱與份量供後備處理
type UnmatchedIngredient struct {
	Name            string  `json:"name"`
	QuantityInGrams float64 `json:"quantity_in_grams"`
}

// Resolution 單一食材的解析結果，兩個欄位恰有一個非空
type Resolution struct {
	Ingredient *AnalysisIngredient  `json:"ingredient,omitempty"`
	Unmatched  *UnmatchedIngredient `json:"unmatched,omitempty"`
}

// Matched 是否成功比對
func (r Resolution) Matched() bool {
	return r.Ingredient != nil
}

// AnalysisMeal 一餐的解析結果與營養總計，返回後唯讀
type AnalysisMeal struct {
	Name        string                `json:"name"`
	Ingredients []AnalysisIngredient  `json:"ingredients"`
	Unmatched   []UnmatchedIngredient `json:"unmatched"`
	Totals      NutrientProfile       `json:"totals"`
}
