package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type CorpusPassage struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content      string          `gorm:"type:text;not null"`
	Embedding    pgvector.Vector `gorm:"type:vector(768)"`
	FileName     string          `gorm:"type:varchar(255);index"`
	RelativePath string          `gorm:"type:text"`
	Title        string          `gorm:"type:text"`
	Author       string          `gorm:"type:varchar(255)"`
	ChunkIndex   int             `gorm:"default:0"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
}

func (CorpusPassage) TableName() string {
	return "corpus_passages"
}
