package mapper

import (
	"github.com/pgvector/pgvector-go"

	"fidesia-be/internal/entity"
	"fidesia-be/internal/model"
)

type PassageMapper struct{}

func NewPassageMapper() *PassageMapper {
	return &PassageMapper{}
}

func (m *PassageMapper) ToEntity(p *model.CorpusPassage) *entity.CorpusPassage {
	if p == nil {
		return nil
	}
	return &entity.CorpusPassage{
		Id:           p.Id,
		Content:      p.Content,
		Embedding:    p.Embedding.Slice(),
		FileName:     p.FileName,
		RelativePath: p.RelativePath,
		Title:        p.Title,
		Author:       p.Author,
		ChunkIndex:   p.ChunkIndex,
		CreatedAt:    p.CreatedAt,
	}
}

func (m *PassageMapper) ToModel(p *entity.CorpusPassage) *model.CorpusPassage {
	if p == nil {
		return nil
	}
	return &model.CorpusPassage{
		Id:           p.Id,
		Content:      p.Content,
		Embedding:    pgvector.NewVector(p.Embedding),
		FileName:     p.FileName,
		RelativePath: p.RelativePath,
		Title:        p.Title,
		Author:       p.Author,
		ChunkIndex:   p.ChunkIndex,
		CreatedAt:    p.CreatedAt,
	}
}
