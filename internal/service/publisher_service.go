package service

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"fidesia-be/internal/dto"
	"fidesia-be/internal/pkg/logger"
)

const ActivityTopic = "activity_events"

// IActivityPublisher records usage events on the in-process bus. The
// consumer persists them, feeds the admin dashboards and mirrors them
// to NATS.
type IActivityPublisher interface {
	Publish(eventType, sessionId string, userId *uuid.UUID, ipAddress string, payload map[string]interface{})
}

type activityPublisher struct {
	pubSub *gochannel.GoChannel
	log    logger.ILogger
}

func NewActivityPublisher(pubSub *gochannel.GoChannel, log logger.ILogger) IActivityPublisher {
	return &activityPublisher{
		pubSub: pubSub,
		log:    log,
	}
}

// Publish is fire-and-forget: recording activity must never fail a
// user request.
func (p *activityPublisher) Publish(eventType, sessionId string, userId *uuid.UUID, ipAddress string, payload map[string]interface{}) {
	msg := dto.ActivityMessage{
		Type:       eventType,
		SessionId:  sessionId,
		UserId:     userId,
		IpAddress:  ipAddress,
		Payload:    payload,
		OccurredAt: time.Now(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		p.log.Warn("activity", "marshal event failed", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
		return
	}

	if err := p.pubSub.Publish(ActivityTopic, message.NewMessage(watermill.NewUUID(), data)); err != nil {
		p.log.Warn("activity", "publish event failed", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
