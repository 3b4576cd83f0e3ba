package entity

import (
	"time"

	"github.com/google/uuid"
)

// CorpusPassage is one embedded chunk of a corpus document.
type CorpusPassage struct {
	Id           uuid.UUID
	Content      string
	Embedding    []float32
	FileName     string
	RelativePath string
	Title        string
	Author       string
	ChunkIndex   int
	CreatedAt    time.Time
}
