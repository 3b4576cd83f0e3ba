package implementation

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"fidesia-be/internal/entity"
	"fidesia-be/internal/mapper"
	"fidesia-be/internal/model"
	"fidesia-be/internal/repository/contract"
	"fidesia-be/internal/repository/specification"
)

type PassageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PassageMapper
}

func NewPassageRepository(db *gorm.DB) contract.PassageRepository {
	return &PassageRepositoryImpl{
		db:     db,
		mapper: mapper.NewPassageMapper(),
	}
}

func (r *PassageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PassageRepositoryImpl) CreateBulk(ctx context.Context, passages []*entity.CorpusPassage) error {
	if len(passages) == 0 {
		return nil
	}
	models := make([]*model.CorpusPassage, len(passages))
	for i, p := range passages {
		models[i] = r.mapper.ToModel(p)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*passages[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *PassageRepositoryImpl) DeleteByRelativePath(ctx context.Context, relativePath string) error {
	return r.db.WithContext(ctx).
		Where("relative_path = ?", relativePath).
		Delete(&model.CorpusPassage{}).Error
}

func (r *PassageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.CorpusPassage{}).Count(&count).Error
	return count, err
}

func (r *PassageRepositoryImpl) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CorpusPassage{}).
		Distinct("relative_path").
		Count(&count).Error
	return count, err
}

// SearchSimilarWithScore computes cosine similarity as
// 1 - (embedding <=> query) and keeps passages above the threshold.
func (r *PassageRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredPassage, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.CorpusPassage
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("corpus_passages").
		Select("corpus_passages.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPassage, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPassage{
			Passage:    r.mapper.ToEntity(&res.CorpusPassage),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
