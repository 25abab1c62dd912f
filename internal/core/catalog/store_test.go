package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-analyzer/internal/core/nutrition"
	"meal-analyzer/internal/pkg/common"
)

// newTestStore 建立帶有少量種子資料的臨時目錄資料庫
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "food.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	schema := []string{
		`CREATE TABLE sr_legacy_food (
			fdc_id INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			normalized_description TEXT,
			fermented_food_serving_size REAL,
			collagen REAL
		)`,
		`CREATE TABLE sr_legacy_nutrient (
			id INTEGER PRIMARY KEY,
			nutrient_nbr TEXT NOT NULL,
			name TEXT NOT NULL,
			unit_name TEXT NOT NULL
		)`,
		`CREATE TABLE sr_legacy_food_nutrient (
			fdc_id INTEGER NOT NULL,
			nutrient_id INTEGER NOT NULL,
			amount REAL NOT NULL
		)`,
		`CREATE TABLE sr_legacy_food_portion (
			id INTEGER PRIMARY KEY,
			fdc_id INTEGER NOT NULL,
			gram_weight REAL NOT NULL,
			amount REAL NOT NULL,
			modifier TEXT
		)`,
		`CREATE VIRTUAL TABLE food_search USING fts5(description)`,
	}
	for _, stmt := range schema {
		_, err := store.DB().Exec(stmt)
		require.NoError(t, err)
	}

	seed := []string{
		`INSERT INTO sr_legacy_food VALUES
			(1001, 'Yogurt, plain, whole milk', 'yogurt plain whole milk', 150.0, NULL),
			(1002, 'Yogurt, Greek, plain, nonfat', 'yogurt greek plain nonfat', 170.0, NULL),
			(1003, 'Chicken, broilers or fryers, breast, meat only, raw', 'chicken broilers or fryers breast meat only raw', NULL, NULL),
			(1004, 'Gelatin, dry powder, unsweetened', 'gelatin dry powder unsweetened', NULL, 85.6)`,
		`INSERT INTO sr_legacy_nutrient VALUES
			(1, '203', 'Protein', 'G'),
			(2, '204', 'Total lipid (fat)', 'G'),
			(3, '208', 'Energy', 'KCAL'),
			(4, '851', 'PUFA 18:3 n-3 c,c,c (ALA)', 'G'),
			(5, '629', 'PUFA 20:5 n-3 (EPA)', 'G')`,
		`INSERT INTO sr_legacy_food_nutrient VALUES
			(1002, 1, 10.19),
			(1002, 2, 0.39),
			(1002, 3, 59.0),
			(1003, 1, 23.1),
			(1003, 4, 0.1),
			(1003, 5, 0.02)`,
		`INSERT INTO sr_legacy_food_portion VALUES
			(501, 1002, 170.0, 1.0, 'container'),
			(502, 1002, 245.0, 1.0, 'cup'),
			(503, 1003, 118.0, 0.5, 'breast')`,
		`INSERT INTO food_search(rowid, description) VALUES
			(1001, 'yogurt plain whole milk'),
			(1002, 'yogurt greek plain nonfat'),
			(1003, 'chicken broilers or fryers breast meat only raw'),
			(1004, 'gelatin dry powder unsweetened')`,
	}
	for _, stmt := range seed {
		_, err := store.DB().Exec(stmt)
		require.NoError(t, err)
	}

	return store
}

func TestLookupRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record, err := store.LookupRecord(ctx, nutrition.RecordID{FDCID: 1002, DataType: DataTypeSRLegacy})
	require.NoError(t, err)
	assert.Equal(t, int64(1002), record.FDCID)
	assert.Equal(t, DataTypeSRLegacy, record.DataType)
	assert.Equal(t, "Yogurt, Greek, plain, nonfat", record.Description)
	assert.Equal(t, "yogurt greek plain nonfat", record.NormalizedDescription)
	require.NotNil(t, record.FermentedServingSize)
	assert.Equal(t, 170.0, *record.FermentedServingSize)
	assert.Nil(t, record.Collagen)
}

func TestLookupRecordCollagen(t *testing.T) {
	store := newTestStore(t)

	record, err := store.LookupRecord(context.Background(), nutrition.RecordID{FDCID: 1004, DataType: DataTypeSRLegacy})
	require.NoError(t, err)
	require.NotNil(t, record.Collagen)
	assert.Equal(t, 85.6, *record.Collagen)
	assert.Nil(t, record.FermentedServingSize)
}

func TestLookupRecordNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LookupRecord(context.Background(), nutrition.RecordID{FDCID: 9999, DataType: DataTypeSRLegacy})
	assert.ErrorIs(t, err, common.ErrRecordNotFound)
}

func TestLookupNutrientsFiltersTrackedCodes(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.LookupNutrients(context.Background(), 1002)
	require.NoError(t, err)

	// Energy (208) 不在追蹤代碼中，應被過濾
	numbers := make([]int, 0, len(rows))
	for _, r := range rows {
		numbers = append(numbers, r.Number)
	}
	assert.ElementsMatch(t, []int{203, 204}, numbers)
}

func TestLookupNutrientsOmega3Rows(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.LookupNutrients(context.Background(), 1003)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	profile := nutrition.MapNutrients(rows, nutrition.FoodRecord{})
	assert.Equal(t, 23.1, profile.ProteinInGrams)
	assert.InDelta(t, 0.12, profile.Omega3sInGrams, 1e-9)
}

func TestLookupPortions(t *testing.T) {
	store := newTestStore(t)

	portions, err := store.LookupPortions(context.Background(), 1002)
	require.NoError(t, err)
	require.Len(t, portions, 2)
	assert.Equal(t, int64(501), portions[0].ID)
	assert.Equal(t, 170.0, portions[0].GramWeight)
	assert.Equal(t, "container", portions[0].Modifier)

	// 沒有份量資料的食品返回空列表
	portions, err = store.LookupPortions(context.Background(), 1001)
	require.NoError(t, err)
	assert.Empty(t, portions)
}

func TestEmbeddingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ResetEmbeddings(ctx))
	require.NoError(t, store.InsertEmbeddings(ctx, []EmbeddingRow{
		{FDCID: 1002, DataType: DataTypeSRLegacy, Description: "yogurt greek plain nonfat", Vector: []float32{0.6, 0.8}},
	}))

	vector, ok, err := store.LookupEmbedding(ctx, nutrition.RecordID{FDCID: 1002, DataType: DataTypeSRLegacy})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{0.6, 0.8}, vector)

	// 沒有向量的紀錄不是錯誤
	vector, ok, err = store.LookupEmbedding(ctx, nutrition.RecordID{FDCID: 1001, DataType: DataTypeSRLegacy})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, vector)
}

func TestScanDescriptions(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.ScanDescriptions(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	for _, e := range entries {
		assert.Equal(t, DataTypeSRLegacy, e.DataType)
		assert.NotEmpty(t, e.NormalizedDescription)
	}
}

func TestLexicalSearch(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.LexicalSearch(context.Background(), "greek yogurt", 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1002), entries[0].FDCID)

	entries, err = store.LexicalSearch(context.Background(), "yogurt", 20)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLexicalSearchEmptyTerm(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.LexicalSearch(context.Background(), "   ", 20)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLexicalSearchQuotesUserInput(t *testing.T) {
	store := newTestStore(t)

	// 查詢語法字元不應造成錯誤
	_, err := store.LexicalSearch(context.Background(), `yogurt AND "greek" OR NEAR(`, 20)
	assert.NoError(t, err)
}

func TestFTSQuery(t *testing.T) {
	assert.Equal(t, `"greek" "yogurt"`, ftsQuery("greek yogurt"))
	assert.Equal(t, `"a"`, ftsQuery("  a  "))
	assert.Equal(t, "", ftsQuery(""))
	assert.Equal(t, `"greek"`, ftsQuery(`"greek"`))
}
