package main

import (
	"bytes"
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"fidesia-be/internal/config"
	"fidesia-be/internal/entity"
	"fidesia-be/internal/repository/contract"
	"fidesia-be/internal/repository/implementation"
	"fidesia-be/pkg/corpus"
	"fidesia-be/pkg/database"
	"fidesia-be/pkg/embedding"
	"fidesia-be/pkg/utils"

	"github.com/ledongthuc/pdf"
)

// Chunking parameters. Character based with overlap so a sentence cut at
// a boundary still appears whole in one of the two chunks.
const (
	chunkSize    = 1200
	chunkOverlap = 200
	insertBatch  = 50
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	only := flag.String("only", "", "ingest a single document by its relative path")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	var provider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		provider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey)
	} else {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	}

	inventory, err := corpus.LoadInventory(cfg.Corpus.InventoryPath)
	if err != nil {
		color.Red("Failed to load inventory: %v", err)
		os.Exit(1)
	}

	repo := implementation.NewPassageRepository(db)
	ctx := context.Background()

	color.Cyan("🚀 Ingesting corpus from %s (%d documents)\n", cfg.Corpus.DocumentsDir, len(inventory.Documents))

	start := time.Now()
	ingested, failed := 0, 0

	for _, doc := range inventory.Documents {
		if *only != "" && doc.RelativePath != *only {
			continue
		}

		color.Yellow("→ %s — %s", doc.Title, doc.RelativePath)
		if err := ingestDocument(ctx, repo, provider, cfg.Corpus.DocumentsDir, doc); err != nil {
			color.Red("  failed: %v", err)
			failed++
			continue
		}
		ingested++
	}

	color.Cyan("\nDone in %s: %d ingested, %d failed", time.Since(start).Round(time.Second), ingested, failed)
	if failed > 0 {
		os.Exit(1)
	}
	color.Green("✅ Corpus ingestion completed")
}

func ingestDocument(
	ctx context.Context,
	repo contract.PassageRepository,
	provider embedding.Provider,
	documentsDir string,
	doc corpus.Document,
) error {
	path, err := corpus.ResolvePDF(documentsDir, doc.RelativePath)
	if err != nil {
		return err
	}

	text, err := extractText(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		color.Yellow("  empty document, skipping")
		return nil
	}

	// Re-ingestion replaces the previous passages of the same file.
	if err := repo.DeleteByRelativePath(ctx, doc.RelativePath); err != nil {
		return err
	}

	chunks := utils.SplitText(text, chunkSize, chunkOverlap)
	passages := make([]*entity.CorpusPassage, 0, len(chunks))

	for i, chunk := range chunks {
		resp, err := provider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return err
		}
		passages = append(passages, &entity.CorpusPassage{
			Id:           uuid.New(),
			Content:      chunk,
			Embedding:    resp.Embedding.Values,
			FileName:     filepath.Base(doc.RelativePath),
			RelativePath: doc.RelativePath,
			Title:        doc.Title,
			Author:       doc.Author,
			ChunkIndex:   i,
		})

		if len(passages) >= insertBatch {
			if err := repo.CreateBulk(ctx, passages); err != nil {
				return err
			}
			passages = passages[:0]
		}
	}

	if len(passages) > 0 {
		if err := repo.CreateBulk(ctx, passages); err != nil {
			return err
		}
	}

	color.Green("  %d chunks", len(chunks))
	return nil
}

func extractText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	content, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	if _, err := buf.ReadFrom(content); err != nil {
		return "", err
	}
	return buf.String(), nil
}
