package dto

import (
	"time"

	"fidesia-be/pkg/rag"
	"fidesia-be/pkg/rag/sources"
)

type TurnDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// AskRequest starts one streamed answer.
type AskRequest struct {
	Question       string    `json:"question" validate:"required"`
	ConversationID string    `json:"conversation_id"`
	History        []TurnDTO `json:"history" validate:"max=20,dive"`
	AgeGroup       string    `json:"age_group"`
	KnowledgeLevel string    `json:"knowledge_level"`
	ResponseLength string    `json:"response_length"`
}

func (r *AskRequest) Profile() rag.Profile {
	return rag.Profile{
		AgeGroup:       r.AgeGroup,
		KnowledgeLevel: r.KnowledgeLevel,
		ResponseLength: r.ResponseLength,
	}
}

func (r *AskRequest) Turns() []rag.Turn {
	turns := make([]rag.Turn, len(r.History))
	for i, t := range r.History {
		turns[i] = rag.Turn{Role: t.Role, Content: t.Content}
	}
	return turns
}

// SaveExchangeRequest persists a completed exchange after the stream.
type SaveExchangeRequest struct {
	ConversationID string              `json:"conversation_id" validate:"required"`
	Question       string              `json:"question" validate:"required"`
	Response       string              `json:"response" validate:"required"`
	Sources        []sources.Reference `json:"sources"`
	AgeGroup       string              `json:"age_group"`
	KnowledgeLevel string              `json:"knowledge_level"`
	ResponseLength string              `json:"response_length"`
	ResponseTimeMs int                 `json:"response_time_ms"`
}

type SaveExchangeResponse struct {
	ExchangeId int64 `json:"exchange_id"`
}

type RateExchangeRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

type ExchangeDTO struct {
	Id        int64               `json:"id"`
	Question  string              `json:"question"`
	Response  string              `json:"response"`
	Sources   []sources.Reference `json:"sources"`
	Rating    *int                `json:"rating,omitempty"`
	Status    string              `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
}

type ConversationDTO struct {
	ConversationId string    `json:"conversation_id"`
	Title          string    `json:"title"`
	StartedAt      time.Time `json:"started_at"`
	LastActivity   time.Time `json:"last_activity"`
	ExchangeCount  int       `json:"exchange_count"`
}
