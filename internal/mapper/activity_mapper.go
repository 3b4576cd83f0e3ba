package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"fidesia-be/internal/entity"
	"fidesia-be/internal/model"
)

type ActivityMapper struct{}

func NewActivityMapper() *ActivityMapper {
	return &ActivityMapper{}
}

func (m *ActivityMapper) ToEntity(e *model.ActivityEvent) *entity.ActivityEvent {
	if e == nil {
		return nil
	}

	var payload map[string]interface{}
	if len(e.Payload) > 0 {
		_ = json.Unmarshal(e.Payload, &payload)
	}

	return &entity.ActivityEvent{
		Id:        e.Id,
		Type:      e.Type,
		SessionId: e.SessionId,
		UserId:    e.UserId,
		Payload:   payload,
		IpAddress: e.IpAddress,
		Country:   e.Country,
		City:      e.City,
		CreatedAt: e.CreatedAt,
	}
}

func (m *ActivityMapper) ToModel(e *entity.ActivityEvent) *model.ActivityEvent {
	if e == nil {
		return nil
	}

	payload := e.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	raw, _ := json.Marshal(payload)

	return &model.ActivityEvent{
		Id:        e.Id,
		Type:      e.Type,
		SessionId: e.SessionId,
		UserId:    e.UserId,
		Payload:   datatypes.JSON(raw),
		IpAddress: e.IpAddress,
		Country:   e.Country,
		City:      e.City,
		CreatedAt: e.CreatedAt,
	}
}

func (m *ActivityMapper) ToEntities(events []*model.ActivityEvent) []*entity.ActivityEvent {
	entities := make([]*entity.ActivityEvent, len(events))
	for i, e := range events {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
