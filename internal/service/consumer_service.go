package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"fidesia-be/internal/dto"
	"fidesia-be/internal/entity"
	"fidesia-be/internal/pkg/logger"
	"fidesia-be/internal/repository/unitofwork"
	"fidesia-be/internal/websocket"
	"fidesia-be/pkg/analytics"
	"fidesia-be/pkg/events"
	pkgNats "fidesia-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the activity bus: each event becomes a
// database row (geolocated when possible), a live push to the admin
// dashboards and a mirror on the NATS stream.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	uowFactory    unitofwork.RepositoryFactory
	hub           *websocket.Hub
	natsPublisher *pkgNats.Publisher
	geoResolver   *analytics.GeoResolver
	log           logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	hub *websocket.Hub,
	natsPublisher *pkgNats.Publisher,
	geoResolver *analytics.GeoResolver,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		uowFactory:    uowFactory,
		hub:           hub,
		natsPublisher: natsPublisher,
		geoResolver:   geoResolver,
		log:           log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, ActivityTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var activity dto.ActivityMessage
	if err := json.Unmarshal(msg.Payload, &activity); err != nil {
		cs.log.Error("consumer", "unmarshal activity message failed", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed, retrying will not help
		return
	}

	event := &entity.ActivityEvent{
		Type:      activity.Type,
		SessionId: activity.SessionId,
		UserId:    activity.UserId,
		Payload:   activity.Payload,
		IpAddress: activity.IpAddress,
		CreatedAt: activity.OccurredAt,
	}

	cs.locate(ctx, event)

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ActivityRepository().Create(ctx, event); err != nil {
		cs.log.Error("consumer", "persist activity event failed", map[string]interface{}{
			"type":  activity.Type,
			"error": err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.hub != nil {
		feedPayload := map[string]interface{}{
			"session_id": activity.SessionId,
			"country":    event.Country,
			"at":         activity.OccurredAt,
		}
		for k, v := range activity.Payload {
			feedPayload[k] = v
		}
		cs.hub.Broadcast(activity.Type, feedPayload)
	}

	if cs.natsPublisher != nil {
		mirrored := events.BaseEvent{
			Type:       activity.Type,
			Data:       activity.Payload,
			OccurredAt: activity.OccurredAt,
		}
		if err := cs.natsPublisher.Publish(ctx, mirrored); err != nil {
			// the row is already stored, the mirror is best effort
			cs.log.Warn("consumer", "mirror to NATS failed", map[string]interface{}{
				"type":  activity.Type,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}

func (cs *consumerService) locate(ctx context.Context, event *entity.ActivityEvent) {
	if cs.geoResolver == nil || event.IpAddress == "" {
		return
	}
	located, err := cs.geoResolver.Resolve(ctx, []string{event.IpAddress})
	if err != nil {
		cs.log.Warn("consumer", "geolocation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if loc, ok := located[event.IpAddress]; ok {
		event.Country = loc.Country
		event.City = loc.City
	}
}
