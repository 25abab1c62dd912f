package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-analyzer/internal/core/ai/cache"
	"meal-analyzer/internal/core/ai/embedding"
	"meal-analyzer/internal/core/catalog"
	"meal-analyzer/internal/infrastructure/config"
	"meal-analyzer/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// 離線向量填充工作
// 掃描目錄中所有食品描述，分批呼叫向量服務，重建 food_embeddings 表
func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := catalog.Open(cfg.Catalog.DBPath)
	if err != nil {
		common.LogFatal("Failed to open catalog database",
			zap.String("path", cfg.Catalog.DBPath),
			zap.Error(err),
		)
	}
	defer store.Close()

	vectorCache := cache.NewVectorCache(cfg)
	defer vectorCache.Close()
	embedder := embedding.NewClient(cfg, vectorCache)

	start := time.Now()
	total, err := populateEmbeddings(ctx, cfg, store, embedder)
	if err != nil {
		common.LogFatal("向量填充失敗", zap.Int("written", total), zap.Error(err))
	}

	common.LogInfo("向量填充完成",
		zap.Int("total", total),
		zap.String("model", cfg.Embedding.Model),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func populateEmbeddings(ctx context.Context, cfg *config.Config, store *catalog.Store, embedder *embedding.Client) (int, error) {
	entries, err := store.ScanDescriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scan catalog: %w", err)
	}
	common.LogInfo("開始向量填充", zap.Int("catalog_size", len(entries)))

	if err := store.ResetEmbeddings(ctx); err != nil {
		return 0, fmt.Errorf("failed to reset embeddings table: %w", err)
	}

	batchSize := cfg.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	written := 0
	for offset := 0; offset < len(entries); offset += batchSize {
		end := offset + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[offset:end]

		texts := make([]string, len(chunk))
		for i, e := range chunk {
			texts[i] = e.NormalizedDescription
		}

		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return written, fmt.Errorf("failed to embed batch at offset %d: %w", offset, err)
		}

		rows := make([]catalog.EmbeddingRow, len(chunk))
		for i, e := range chunk {
			rows[i] = catalog.EmbeddingRow{
				FDCID:       e.FDCID,
				DataType:    e.DataType,
				Description: e.NormalizedDescription,
				Vector:      vectors[i],
			}
		}

		if err := store.InsertEmbeddings(ctx, rows); err != nil {
			return written, fmt.Errorf("failed to insert batch at offset %d: %w", offset, err)
		}
		written += len(rows)

		common.LogInfo("批次寫入完成",
			zap.Int("offset", offset),
			zap.Int("batch_size", len(rows)),
			zap.Int("written", written),
		)
	}

	return written, nil
}
