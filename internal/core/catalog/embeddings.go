package catalog

import (
	"context"
	"encoding/json"
	"fmt"
)

// EmbeddingRow 離線向量填充工作寫入的一列
type EmbeddingRow struct {
	FDCID       int64
	DataType    string
	Description string
	Vector      []float32
}

// ResetEmbeddings 重建向量表
// 僅供離線填充工作使用；線上服務對目錄只讀
func (s *Store) ResetEmbeddings(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS food_embeddings`); err != nil {
		return fmt.Errorf("failed to drop embeddings table: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE food_embeddings (
			fdc_id INTEGER NOT NULL,
			data_type TEXT NOT NULL,
			description TEXT NOT NULL,
			embedding TEXT NOT NULL,
			PRIMARY KEY (fdc_id, data_type)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create embeddings table: %w", err)
	}
	return nil
}

// InsertEmbeddings 批次寫入向量列，單一交易
func (s *Store) InsertEmbeddings(ctx context.Context, batch []EmbeddingRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO food_embeddings (fdc_id, data_type, description, embedding)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare embedding insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range batch {
		encoded, err := json.Marshal(row.Vector)
		if err != nil {
			return fmt.Errorf("failed to encode embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, row.FDCID, row.DataType, row.Description, string(encoded)); err != nil {
			return fmt.Errorf("failed to insert embedding: %w", err)
		}
	}

	return tx.Commit()
}
