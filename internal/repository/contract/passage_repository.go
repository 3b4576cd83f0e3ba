package contract

import (
	"context"

	"fidesia-be/internal/entity"
	"fidesia-be/internal/repository/specification"
)

// ScoredPassage pairs a corpus passage with its cosine similarity to the
// query vector.
type ScoredPassage struct {
	Passage    *entity.CorpusPassage
	Similarity float64
}

type PassageRepository interface {
	CreateBulk(ctx context.Context, passages []*entity.CorpusPassage) error
	DeleteByRelativePath(ctx context.Context, relativePath string) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountDocuments(ctx context.Context) (int64, error)

	// SearchSimilarWithScore runs a pgvector cosine search and keeps only
	// passages at or above the threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredPassage, error)
}
