package contract

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fidesia-be/internal/entity"
	"fidesia-be/internal/repository/specification"
)

// DailyCount is one day of exchange volume for the admin dashboard.
type DailyCount struct {
	Day   time.Time
	Count int64
}

// LabelCount is a generic grouped count (rating value, age group, ...).
type LabelCount struct {
	Label string
	Count int64
}

// PersonalizationStats groups exchanges by each personalization axis.
// Empty labels mean the client sent no preference.
type PersonalizationStats struct {
	AgeGroups       []LabelCount
	KnowledgeLevels []LabelCount
	ResponseLengths []LabelCount
}

type ExchangeRepository interface {
	Create(ctx context.Context, exchange *entity.Exchange) error
	Update(ctx context.Context, exchange *entity.Exchange) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Exchange, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exchange, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateRating sets or replaces the rating of one exchange.
	UpdateRating(ctx context.Context, id int64, rating int) error

	// Delete soft-deletes a single exchange.
	Delete(ctx context.Context, id int64) error

	// DeleteConversation soft-deletes every exchange of a conversation.
	DeleteConversation(ctx context.Context, conversationId string, specs ...specification.Specification) (int64, error)

	// ListConversations groups the caller's exchanges by conversation:
	// first question as title, MIN(timestamp) as start, newest first.
	ListConversations(ctx context.Context, userId *uuid.UUID, sessionId string) ([]*entity.ConversationSummary, error)

	// Admin aggregations
	CountByDay(ctx context.Context, since time.Time) ([]DailyCount, error)
	AverageRating(ctx context.Context) (float64, int64, error)
	AverageResponseTimeMs(ctx context.Context, since time.Time) (float64, error)
	RatingDistribution(ctx context.Context) ([]LabelCount, error)
	PersonalizationBreakdown(ctx context.Context, since time.Time) (*PersonalizationStats, error)
	RecentQuestions(ctx context.Context, limit int) ([]*entity.Exchange, error)
}
