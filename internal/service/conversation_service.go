package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"fidesia-be/internal/dto"
	"fidesia-be/internal/entity"
	"fidesia-be/internal/pkg/logger"
	"fidesia-be/internal/repository/specification"
	"fidesia-be/internal/repository/unitofwork"
)

var (
	ErrForbidden        = errors.New("accès refusé")
	ErrExchangeNotFound = errors.New("échange introuvable")
)

// Caller identifies who is acting: an authenticated user or an
// anonymous session.
type Caller struct {
	UserId    *uuid.UUID
	SessionId string
}

type IConversationService interface {
	SaveExchange(ctx context.Context, req *dto.SaveExchangeRequest, caller Caller) (*dto.SaveExchangeResponse, error)
	ListConversations(ctx context.Context, caller Caller) ([]dto.ConversationDTO, error)
	GetHistory(ctx context.Context, conversationId string, caller Caller) ([]dto.ExchangeDTO, error)
	DeleteConversation(ctx context.Context, conversationId string, caller Caller) error
	DeleteExchange(ctx context.Context, exchangeId int64, caller Caller) error
	RateExchange(ctx context.Context, exchangeId int64, rating int, caller Caller) error
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IActivityPublisher
	model      string
	log        logger.ILogger
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory, publisher IActivityPublisher, model string, log logger.ILogger) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		publisher:  publisher,
		model:      model,
		log:        log,
	}
}

// canAccess decides whether the caller may touch an exchange: the
// authenticated owner, or the anonymous session that created it.
func canAccess(exchange *entity.Exchange, caller Caller) bool {
	if exchange.UserId != nil {
		return caller.UserId != nil && *caller.UserId == *exchange.UserId
	}
	return exchange.SessionId == caller.SessionId
}

// SaveExchange records a completed exchange after the stream ends. The
// exchange identifier the client needs for rating comes back here.
func (s *conversationService) SaveExchange(ctx context.Context, req *dto.SaveExchangeRequest, caller Caller) (*dto.SaveExchangeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Appending to someone else's conversation is forbidden, so probe
	// the existing exchanges of the target conversation first.
	existing, err := uow.ExchangeRepository().FindOne(ctx,
		specification.ByConversationID{ConversationID: req.ConversationID})
	if err != nil {
		return nil, err
	}
	if existing != nil && !canAccess(existing, caller) {
		return nil, ErrForbidden
	}

	exchange := &entity.Exchange{
		SessionId:      caller.SessionId,
		ConversationId: req.ConversationID,
		UserId:         caller.UserId,
		Question:       req.Question,
		Response:       req.Response,
		Sources:        req.Sources,
		AgeGroup:       req.AgeGroup,
		KnowledgeLevel: req.KnowledgeLevel,
		ResponseLength: req.ResponseLength,
		Model:          s.model,
		ResponseTimeMs: req.ResponseTimeMs,
		Status:         entity.ExchangeStatusComplete,
		Timestamp:      time.Now(),
	}

	if err := uow.ExchangeRepository().Create(ctx, exchange); err != nil {
		return nil, err
	}

	return &dto.SaveExchangeResponse{ExchangeId: exchange.Id}, nil
}

func (s *conversationService) ListConversations(ctx context.Context, caller Caller) ([]dto.ConversationDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	summaries, err := uow.ExchangeRepository().ListConversations(ctx, caller.UserId, caller.SessionId)
	if err != nil {
		return nil, err
	}

	conversations := make([]dto.ConversationDTO, len(summaries))
	for i, summary := range summaries {
		conversations[i] = dto.ConversationDTO{
			ConversationId: summary.ConversationId,
			Title:          truncateTitle(summary.Title),
			StartedAt:      summary.StartedAt,
			LastActivity:   summary.LastActivity,
			ExchangeCount:  summary.ExchangeCount,
		}
	}
	return conversations, nil
}

// truncateTitle caps a conversation title at 50 characters, rune-safe.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 50 {
		return title
	}
	return string(runes[:50]) + "…"
}

func (s *conversationService) GetHistory(ctx context.Context, conversationId string, caller Caller) ([]dto.ExchangeDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	exchanges, err := uow.ExchangeRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.VisibleTo{UserID: caller.UserId, SessionID: caller.SessionId},
		specification.OrderBy{Field: "timestamp"},
	)
	if err != nil {
		return nil, err
	}

	// An existing conversation owned by someone else must answer 403,
	// not an empty list that would leak its existence as deletable.
	if len(exchanges) == 0 {
		any, err := uow.ExchangeRepository().FindOne(ctx,
			specification.ByConversationID{ConversationID: conversationId})
		if err != nil {
			return nil, err
		}
		if any != nil {
			return nil, ErrForbidden
		}
	}

	history := make([]dto.ExchangeDTO, len(exchanges))
	for i, exchange := range exchanges {
		history[i] = dto.ExchangeDTO{
			Id:        exchange.Id,
			Question:  exchange.Question,
			Response:  exchange.Response,
			Sources:   exchange.Sources,
			Rating:    exchange.Rating,
			Status:    string(exchange.Status),
			Timestamp: exchange.Timestamp,
		}
	}
	return history, nil
}

func (s *conversationService) DeleteConversation(ctx context.Context, conversationId string, caller Caller) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	owned, err := uow.ExchangeRepository().FindOne(ctx,
		specification.ByConversationID{ConversationID: conversationId})
	if err != nil {
		return err
	}
	if owned == nil {
		return ErrExchangeNotFound
	}
	if !canAccess(owned, caller) {
		return ErrForbidden
	}

	deleted, err := uow.ExchangeRepository().DeleteConversation(ctx, conversationId,
		specification.VisibleTo{UserID: caller.UserId, SessionID: caller.SessionId})
	if err != nil {
		return err
	}

	s.log.Info("Conversation", "conversation deleted", map[string]interface{}{
		"conversation_id": conversationId,
		"exchanges":       deleted,
	})
	return nil
}

func (s *conversationService) DeleteExchange(ctx context.Context, exchangeId int64, caller Caller) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	exchange, err := uow.ExchangeRepository().FindOne(ctx,
		specification.FilterBy{Field: "id", Value: exchangeId})
	if err != nil {
		return err
	}
	if exchange == nil {
		return ErrExchangeNotFound
	}
	if !canAccess(exchange, caller) {
		return ErrForbidden
	}

	return uow.ExchangeRepository().Delete(ctx, exchangeId)
}

func (s *conversationService) RateExchange(ctx context.Context, exchangeId int64, rating int, caller Caller) error {
	if rating < 1 || rating > 5 {
		return errors.New("la note doit être comprise entre 1 et 5")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	exchange, err := uow.ExchangeRepository().FindOne(ctx,
		specification.FilterBy{Field: "id", Value: exchangeId})
	if err != nil {
		return err
	}
	if exchange == nil {
		return ErrExchangeNotFound
	}
	if !canAccess(exchange, caller) {
		// An authenticated user may rate an ownerless exchange, which
		// adopts it into their account.
		if exchange.UserId != nil || caller.UserId == nil {
			return ErrForbidden
		}
		exchange.UserId = caller.UserId
		if err := uow.ExchangeRepository().Update(ctx, exchange); err != nil {
			return err
		}
	}

	if err := uow.ExchangeRepository().UpdateRating(ctx, exchangeId, rating); err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.Publish(entity.ActivityAnswerRated, caller.SessionId, caller.UserId, "", map[string]interface{}{
			"exchange_id": exchangeId,
			"rating":      rating,
		})
	}
	return nil
}
