package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"fidesia-be/internal/entity"
	"fidesia-be/internal/model"
	"fidesia-be/pkg/rag/sources"
)

type ExchangeMapper struct{}

func NewExchangeMapper() *ExchangeMapper {
	return &ExchangeMapper{}
}

func (m *ExchangeMapper) ToEntity(e *model.Exchange) *entity.Exchange {
	if e == nil {
		return nil
	}

	var refs []sources.Reference
	if len(e.Sources) > 0 {
		// a corrupt column yields no sources rather than a failed read
		_ = json.Unmarshal(e.Sources, &refs)
	}

	return &entity.Exchange{
		Id:             e.Id,
		SessionId:      e.SessionId,
		ConversationId: e.ConversationId,
		UserId:         e.UserId,
		Question:       e.Question,
		Response:       e.Response,
		Sources:        refs,
		Rating:         e.Rating,
		AgeGroup:       e.AgeGroup,
		KnowledgeLevel: e.KnowledgeLevel,
		ResponseLength: e.ResponseLength,
		Model:          e.Model,
		ResponseTimeMs: e.ResponseTimeMs,
		Status:         entity.ExchangeStatus(e.Status),
		Timestamp:      e.Timestamp,
	}
}

func (m *ExchangeMapper) ToModel(e *entity.Exchange) *model.Exchange {
	if e == nil {
		return nil
	}

	refs := e.Sources
	if refs == nil {
		refs = []sources.Reference{}
	}
	raw, _ := json.Marshal(refs)

	return &model.Exchange{
		Id:             e.Id,
		SessionId:      e.SessionId,
		ConversationId: e.ConversationId,
		UserId:         e.UserId,
		Question:       e.Question,
		Response:       e.Response,
		Sources:        datatypes.JSON(raw),
		Rating:         e.Rating,
		AgeGroup:       e.AgeGroup,
		KnowledgeLevel: e.KnowledgeLevel,
		ResponseLength: e.ResponseLength,
		Model:          e.Model,
		ResponseTimeMs: e.ResponseTimeMs,
		Status:         string(e.Status),
		Timestamp:      e.Timestamp,
	}
}

func (m *ExchangeMapper) ToEntities(exchanges []*model.Exchange) []*entity.Exchange {
	entities := make([]*entity.Exchange, len(exchanges))
	for i, e := range exchanges {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
