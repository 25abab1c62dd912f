package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"meal-analyzer/internal/core/nutrition"
	"meal-analyzer/internal/pkg/common"
)

// DataTypeSRLegacy 目前目錄僅涵蓋 SR Legacy 資料集
const DataTypeSRLegacy = "sr_legacy_food"

// Entry 目錄掃描與檢索返回的輕量條目
type Entry struct {
	FDCID                 int64
	DataType              string
	Description           string
	NormalizedDescription string
}

// ID 返回條目的複合識別鍵
func (e Entry) ID() nutrition.RecordID {
	return nutrition.RecordID{FDCID: e.FDCID, DataType: e.DataType}
}

// Store 食品目錄的唯讀存取層
// 目錄由離線匯入流程建好後整個替換，請求期間不做寫入
type Store struct {
	db *sql.DB
}

// Open 開啟目錄資料庫
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 關閉資料庫連線
func (s *Store) Close() error {
	return s.db.Close()
}

// DB 暴露底層連線給離線工具使用
func (s *Store) DB() *sql.DB {
	return s.db
}

// LookupRecord 以複合識別鍵查詢食品紀錄
// 查無紀錄時返回 common.ErrRecordNotFound
func (s *Store) LookupRecord(ctx context.Context, id nutrition.RecordID) (nutrition.FoodRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fdc_id, description, normalized_description,
		       fermented_food_serving_size, CAST(collagen AS REAL) AS collagen
		FROM sr_legacy_food
		WHERE fdc_id = ?
	`, id.FDCID)

	record := nutrition.FoodRecord{DataType: DataTypeSRLegacy}
	var normalized sql.NullString
	var servingSize, collagen sql.NullFloat64
	if err := row.Scan(&record.FDCID, &record.Description, &normalized, &servingSize, &collagen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nutrition.FoodRecord{}, common.ErrRecordNotFound
		}
		return nutrition.FoodRecord{}, fmt.Errorf("failed to query food record: %w", err)
	}

	record.NormalizedDescription = normalized.String
	if servingSize.Valid {
		v := servingSize.Float64
		record.FermentedServingSize = &v
	}
	if collagen.Valid {
		v := collagen.Float64
		record.Collagen = &v
	}

	return record, nil
}

// LookupNutrients 查詢食品的營養素列，僅取追蹤中的代碼
func (s *Store) LookupNutrients(ctx context.Context, fdcID int64) ([]nutrition.NutrientRow, error) {
	numbers := nutrition.TrackedNutrientNumbers()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(numbers)), ",")

	args := make([]interface{}, 0, len(numbers)+1)
	args = append(args, fdcID)
	for _, n := range numbers {
		args = append(args, n)
	}

	query := fmt.Sprintf(`
		SELECT CAST(n.nutrient_nbr AS INTEGER), fn.amount, n.name, n.unit_name
		FROM sr_legacy_food_nutrient fn
		JOIN sr_legacy_nutrient n ON fn.nutrient_id = n.id
		WHERE fn.fdc_id = ?
		  AND CAST(n.nutrient_nbr AS INTEGER) IN (%s)
	`, placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nutrients: %w", err)
	}
	defer rows.Close()

	var nutrients []nutrition.NutrientRow
	for rows.Next() {
		var n nutrition.NutrientRow
		if err := rows.Scan(&n.Number, &n.Amount, &n.Name, &n.UnitName); err != nil {
			return nil, fmt.Errorf("failed to scan nutrient row: %w", err)
		}
		nutrients = append(nutrients, n)
	}
	return nutrients, rows.Err()
}

// LookupPortions 查詢食品的份量列表，可能為空
func (s *Store) LookupPortions(ctx context.Context, fdcID int64) ([]nutrition.FoodPortion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fp.id, fp.gram_weight, fp.amount, fp.modifier
		FROM sr_legacy_food_portion fp
		WHERE fp.fdc_id = ?
	`, fdcID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portions: %w", err)
	}
	defer rows.Close()

	var portions []nutrition.FoodPortion
	for rows.Next() {
		var p nutrition.FoodPortion
		var modifier sql.NullString
		if err := rows.Scan(&p.ID, &p.GramWeight, &p.Amount, &modifier); err != nil {
			return nil, fmt.Errorf("failed to scan portion row: %w", err)
		}
		p.Modifier = modifier.String
		portions = append(portions, p)
	}
	return portions, rows.Err()
}

// LookupEmbedding 查詢紀錄的預計算向量
// 舊紀錄可能沒有向量，此時返回 (nil, false, nil) 而非錯誤
func (s *Store) LookupEmbedding(ctx context.Context, id nutrition.RecordID) ([]float32, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT embedding FROM food_embeddings
		WHERE fdc_id = ? AND data_type = ?
	`, id.FDCID, id.DataType)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query embedding: %w", err)
	}

	var vector []float32
	if err := json.Unmarshal([]byte(raw), &vector); err != nil {
		return nil, false, fmt.Errorf("failed to decode embedding: %w", err)
	}
	return vector, true, nil
}

// ScanDescriptions 批次掃描整個目錄的 (識別鍵, 標準化描述)
// 模糊比對表在啟動時以此建立一次，之後共用唯讀
func (s *Store) ScanDescriptions(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fdc_id, description, normalized_description
		FROM sr_legacy_food
		WHERE normalized_description IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog descriptions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{DataType: DataTypeSRLegacy}
		if err := rows.Scan(&e.FDCID, &e.Description, &e.NormalizedDescription); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LexicalSearch 以 FTS5 全文索引做相關度排序檢索（bm25）
func (s *Store) LexicalSearch(ctx context.Context, term string, limit int) ([]Entry, error) {
	match := ftsQuery(term)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH fts_results AS (
			SELECT rowid AS fdc_id, bm25(food_search) AS score
			FROM food_search
			WHERE food_search MATCH ?
			LIMIT ?
		)
		SELECT fts_results.fdc_id, f.description, f.normalized_description
		FROM fts_results
		JOIN sr_legacy_food f ON f.fdc_id = fts_results.fdc_id
		ORDER BY fts_results.score
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run lexical search: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{DataType: DataTypeSRLegacy}
		var normalized sql.NullString
		if err := rows.Scan(&e.FDCID, &e.Description, &normalized); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		e.NormalizedDescription = normalized.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ftsQuery 將查詢詞轉為安全的 FTS5 MATCH 表達式
// 逐詞加上雙引號，避免使用者輸入被當成查詢語法
func ftsQuery(term string) string {
	fields := strings.Fields(term)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, ``)+`"`)
	}
	return strings.Join(quoted, " ")
}
