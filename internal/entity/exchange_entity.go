package entity

import (
	"time"

	"github.com/google/uuid"

	"fidesia-be/pkg/rag/sources"
)

type ExchangeStatus string

const (
	ExchangeStatusComplete    ExchangeStatus = "complete"
	ExchangeStatusInterrupted ExchangeStatus = "interrupted"
)

// Exchange is one question/answer pair inside a conversation. UserId is
// nil for anonymous sessions, which are keyed by SessionId only.
type Exchange struct {
	Id             int64
	SessionId      string
	ConversationId string
	UserId         *uuid.UUID
	Question       string
	Response       string
	Sources        []sources.Reference
	Rating         *int
	AgeGroup       string
	KnowledgeLevel string
	ResponseLength string
	Model          string
	ResponseTimeMs int
	Status         ExchangeStatus
	Timestamp      time.Time
}

// ConversationSummary is the list view of a conversation: grouped
// exchanges under one conversation id.
type ConversationSummary struct {
	ConversationId string
	Title          string
	StartedAt      time.Time
	LastActivity   time.Time
	ExchangeCount  int
}
