package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fidesia-be/internal/dto"
	"fidesia-be/internal/entity"
	"fidesia-be/internal/pkg/logger"
	"fidesia-be/internal/repository/contract"
	"fidesia-be/internal/repository/specification"
	"fidesia-be/internal/repository/unitofwork"
)

// fakeExchangeRepo is an in-memory ExchangeRepository with just enough
// behaviour for the ownership rules.
type fakeExchangeRepo struct {
	exchanges []*entity.Exchange

	created       []*entity.Exchange
	ratings       map[int64]int
	deletedConvos []string
}

func newFakeExchangeRepo(exchanges ...*entity.Exchange) *fakeExchangeRepo {
	return &fakeExchangeRepo{exchanges: exchanges, ratings: map[int64]int{}}
}

func (r *fakeExchangeRepo) matches(e *entity.Exchange, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByConversationID:
			if e.ConversationId != s.ConversationID {
				return false
			}
		case specification.BySessionID:
			if e.SessionId != s.SessionID {
				return false
			}
		case specification.VisibleTo:
			if e.UserId != nil {
				if s.UserID == nil || *s.UserID != *e.UserId {
					return false
				}
			} else if e.SessionId != s.SessionID {
				return false
			}
		case specification.FilterBy:
			if s.Field == "id" {
				if id, ok := s.Value.(int64); !ok || e.Id != id {
					return false
				}
			}
		}
	}
	return true
}

func (r *fakeExchangeRepo) Create(ctx context.Context, exchange *entity.Exchange) error {
	exchange.Id = int64(len(r.exchanges) + len(r.created) + 1)
	r.created = append(r.created, exchange)
	return nil
}

func (r *fakeExchangeRepo) Update(ctx context.Context, exchange *entity.Exchange) error {
	return nil
}

func (r *fakeExchangeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Exchange, error) {
	for _, e := range r.exchanges {
		if r.matches(e, specs) {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeExchangeRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exchange, error) {
	var out []*entity.Exchange
	for _, e := range r.exchanges {
		if r.matches(e, specs) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExchangeRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, _ := r.FindAll(ctx, specs...)
	return int64(len(found)), nil
}

func (r *fakeExchangeRepo) UpdateRating(ctx context.Context, id int64, rating int) error {
	r.ratings[id] = rating
	return nil
}

func (r *fakeExchangeRepo) Delete(ctx context.Context, id int64) error {
	for i, e := range r.exchanges {
		if e.Id == id {
			r.exchanges = append(r.exchanges[:i], r.exchanges[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeExchangeRepo) DeleteConversation(ctx context.Context, conversationId string, specs ...specification.Specification) (int64, error) {
	r.deletedConvos = append(r.deletedConvos, conversationId)
	var deleted int64
	for _, e := range r.exchanges {
		if e.ConversationId == conversationId && r.matches(e, specs) {
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeExchangeRepo) ListConversations(ctx context.Context, userId *uuid.UUID, sessionId string) ([]*entity.ConversationSummary, error) {
	return nil, nil
}

func (r *fakeExchangeRepo) CountByDay(ctx context.Context, since time.Time) ([]contract.DailyCount, error) {
	return nil, nil
}

func (r *fakeExchangeRepo) AverageRating(ctx context.Context) (float64, int64, error) {
	return 0, 0, nil
}

func (r *fakeExchangeRepo) AverageResponseTimeMs(ctx context.Context, since time.Time) (float64, error) {
	return 0, nil
}

func (r *fakeExchangeRepo) RatingDistribution(ctx context.Context) ([]contract.LabelCount, error) {
	return nil, nil
}

func (r *fakeExchangeRepo) PersonalizationBreakdown(ctx context.Context, since time.Time) (*contract.PersonalizationStats, error) {
	return nil, nil
}

func (r *fakeExchangeRepo) RecentQuestions(ctx context.Context, limit int) ([]*entity.Exchange, error) {
	return nil, nil
}

type fakeUnitOfWork struct {
	users     contract.UserRepository
	exchanges *fakeExchangeRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository         { return u.users }
func (u *fakeUnitOfWork) ExchangeRepository() contract.ExchangeRepository { return u.exchanges }
func (u *fakeUnitOfWork) PassageRepository() contract.PassageRepository   { return nil }
func (u *fakeUnitOfWork) ActivityRepository() contract.ActivityRepository { return nil }

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func newConversationService(repo *fakeExchangeRepo) IConversationService {
	factory := &fakeFactory{uow: &fakeUnitOfWork{exchanges: repo}}
	return NewConversationService(factory, nil, "mistral:7b", logger.NewNopLogger())
}

func ownedExchange(userId *uuid.UUID, sessionId, conversationId string) *entity.Exchange {
	return &entity.Exchange{
		Id:             1,
		SessionId:      sessionId,
		ConversationId: conversationId,
		UserId:         userId,
		Question:       "Qu'est-ce que la grâce ?",
		Response:       "La grâce est un don gratuit de Dieu.",
		Status:         entity.ExchangeStatusComplete,
		Timestamp:      time.Now(),
	}
}

func TestSaveExchangeCreatesCompleteExchange(t *testing.T) {
	repo := newFakeExchangeRepo()
	svc := newConversationService(repo)

	res, err := svc.SaveExchange(context.Background(), &dto.SaveExchangeRequest{
		ConversationID: "conv-1",
		Question:       "Qui est saint Augustin ?",
		Response:       "Un évêque d'Hippone.",
		ResponseTimeMs: 1200,
	}, Caller{SessionId: "session-a"})

	assert.NoError(t, err)
	assert.NotZero(t, res.ExchangeId)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, entity.ExchangeStatusComplete, repo.created[0].Status)
	assert.Equal(t, "mistral:7b", repo.created[0].Model)
	assert.Equal(t, "session-a", repo.created[0].SessionId)
}

func TestSaveExchangeRejectsForeignConversation(t *testing.T) {
	owner := uuid.New()
	repo := newFakeExchangeRepo(ownedExchange(&owner, "session-a", "conv-1"))
	svc := newConversationService(repo)

	_, err := svc.SaveExchange(context.Background(), &dto.SaveExchangeRequest{
		ConversationID: "conv-1",
		Question:       "q",
		Response:       "r",
	}, Caller{SessionId: "session-b"})

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, repo.created)
}

func TestGetHistoryAnonymousSession(t *testing.T) {
	repo := newFakeExchangeRepo(ownedExchange(nil, "session-a", "conv-1"))
	svc := newConversationService(repo)

	history, err := svc.GetHistory(context.Background(), "conv-1", Caller{SessionId: "session-a"})

	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, "Qu'est-ce que la grâce ?", history[0].Question)
}

func TestGetHistoryForeignConversationIsForbiddenNotEmpty(t *testing.T) {
	owner := uuid.New()
	repo := newFakeExchangeRepo(ownedExchange(&owner, "session-a", "conv-1"))
	svc := newConversationService(repo)

	_, err := svc.GetHistory(context.Background(), "conv-1", Caller{SessionId: "session-b"})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetHistoryUnknownConversationIsEmpty(t *testing.T) {
	repo := newFakeExchangeRepo()
	svc := newConversationService(repo)

	history, err := svc.GetHistory(context.Background(), "conv-missing", Caller{SessionId: "session-a"})

	assert.NoError(t, err)
	assert.Empty(t, history)
}

func TestDeleteConversation(t *testing.T) {
	userId := uuid.New()
	repo := newFakeExchangeRepo(ownedExchange(&userId, "session-a", "conv-1"))
	svc := newConversationService(repo)

	t.Run("unknown conversation", func(t *testing.T) {
		err := svc.DeleteConversation(context.Background(), "conv-missing", Caller{SessionId: "session-a"})
		assert.ErrorIs(t, err, ErrExchangeNotFound)
	})

	t.Run("foreign conversation", func(t *testing.T) {
		err := svc.DeleteConversation(context.Background(), "conv-1", Caller{SessionId: "session-b"})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, repo.deletedConvos)
	})

	t.Run("owner deletes", func(t *testing.T) {
		err := svc.DeleteConversation(context.Background(), "conv-1", Caller{UserId: &userId, SessionId: "session-x"})
		assert.NoError(t, err)
		assert.Equal(t, []string{"conv-1"}, repo.deletedConvos)
	})
}

func TestRateExchange(t *testing.T) {
	repo := newFakeExchangeRepo(ownedExchange(nil, "session-a", "conv-1"))
	svc := newConversationService(repo)

	t.Run("rating out of range", func(t *testing.T) {
		err := svc.RateExchange(context.Background(), 1, 6, Caller{SessionId: "session-a"})
		assert.Error(t, err)
	})

	t.Run("foreign exchange", func(t *testing.T) {
		err := svc.RateExchange(context.Background(), 1, 4, Caller{SessionId: "session-b"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown exchange", func(t *testing.T) {
		err := svc.RateExchange(context.Background(), 99, 4, Caller{SessionId: "session-a"})
		assert.ErrorIs(t, err, ErrExchangeNotFound)
	})

	t.Run("owner rates", func(t *testing.T) {
		err := svc.RateExchange(context.Background(), 1, 5, Caller{SessionId: "session-a"})
		assert.NoError(t, err)
		assert.Equal(t, 5, repo.ratings[1])
	})

	t.Run("authenticated user adopts ownerless exchange", func(t *testing.T) {
		userId := uuid.New()
		err := svc.RateExchange(context.Background(), 1, 4, Caller{UserId: &userId, SessionId: "session-x"})
		assert.NoError(t, err)
		assert.Equal(t, 4, repo.ratings[1])
		assert.Equal(t, &userId, repo.exchanges[0].UserId)
	})
}

func TestDeleteExchange(t *testing.T) {
	repo := newFakeExchangeRepo(ownedExchange(nil, "session-a", "conv-1"))
	svc := newConversationService(repo)

	err := svc.DeleteExchange(context.Background(), 1, Caller{SessionId: "session-b"})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.DeleteExchange(context.Background(), 1, Caller{SessionId: "session-a"})
	assert.NoError(t, err)
	assert.Empty(t, repo.exchanges)

	err = svc.DeleteExchange(context.Background(), 1, Caller{SessionId: "session-a"})
	assert.ErrorIs(t, err, ErrExchangeNotFound)
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "courte", truncateTitle("courte"))

	long := strings.Repeat("é", 60)
	truncated := truncateTitle(long)
	assert.Equal(t, 51, len([]rune(truncated)))
	assert.Equal(t, "…", string([]rune(truncated)[50]))
}
