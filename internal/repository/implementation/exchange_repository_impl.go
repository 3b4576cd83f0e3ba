package implementation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fidesia-be/internal/entity"
	"fidesia-be/internal/mapper"
	"fidesia-be/internal/model"
	"fidesia-be/internal/repository/contract"
	"fidesia-be/internal/repository/specification"
)

type ExchangeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExchangeMapper
}

func NewExchangeRepository(db *gorm.DB) contract.ExchangeRepository {
	return &ExchangeRepositoryImpl{
		db:     db,
		mapper: mapper.NewExchangeMapper(),
	}
}

func (r *ExchangeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ExchangeRepositoryImpl) Create(ctx context.Context, exchange *entity.Exchange) error {
	m := r.mapper.ToModel(exchange)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*exchange = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExchangeRepositoryImpl) Update(ctx context.Context, exchange *entity.Exchange) error {
	m := r.mapper.ToModel(exchange)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*exchange = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExchangeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Exchange, error) {
	var m model.Exchange
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ExchangeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exchange, error) {
	var models []*model.Exchange
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ExchangeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Exchange{}).Count(&count).Error
	return count, err
}

func (r *ExchangeRepositoryImpl) UpdateRating(ctx context.Context, id int64, rating int) error {
	return r.db.WithContext(ctx).
		Model(&model.Exchange{}).
		Where("id = ?", id).
		Update("rating", rating).Error
}

func (r *ExchangeRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Exchange{}, id).Error
}

func (r *ExchangeRepositoryImpl) DeleteConversation(ctx context.Context, conversationId string, specs ...specification.Specification) (int64, error) {
	query := r.applySpecifications(r.db.WithContext(ctx), specs...).
		Where("conversation_id = ?", conversationId)
	result := query.Delete(&model.Exchange{})
	return result.RowsAffected, result.Error
}

// ListConversations groups by conversation_id. The title is the first
// question asked, ordering is by most recent activity.
func (r *ExchangeRepositoryImpl) ListConversations(ctx context.Context, userId *uuid.UUID, sessionId string) ([]*entity.ConversationSummary, error) {
	type row struct {
		ConversationId string
		Title          string
		StartedAt      time.Time
		LastActivity   time.Time
		ExchangeCount  int
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Table("exchanges").
		Select(`conversation_id,
			(array_agg(question ORDER BY timestamp ASC))[1] AS title,
			MIN(timestamp) AS started_at,
			MAX(timestamp) AS last_activity,
			COUNT(*) AS exchange_count`).
		Where("deleted_at IS NULL")

	if userId != nil {
		query = query.Where("user_id = ?", *userId)
	} else {
		query = query.Where("user_id IS NULL AND session_id = ?", sessionId)
	}

	err := query.
		Group("conversation_id").
		Order("last_activity DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]*entity.ConversationSummary, len(rows))
	for i, row := range rows {
		summaries[i] = &entity.ConversationSummary{
			ConversationId: row.ConversationId,
			Title:          row.Title,
			StartedAt:      row.StartedAt,
			LastActivity:   row.LastActivity,
			ExchangeCount:  row.ExchangeCount,
		}
	}
	return summaries, nil
}

func (r *ExchangeRepositoryImpl) CountByDay(ctx context.Context, since time.Time) ([]contract.DailyCount, error) {
	type row struct {
		Day   time.Time
		Count int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Table("exchanges").
		Select("date_trunc('day', timestamp) AS day, COUNT(*) AS count").
		Where("deleted_at IS NULL AND timestamp >= ?", since).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]contract.DailyCount, len(rows))
	for i, row := range rows {
		counts[i] = contract.DailyCount{Day: row.Day, Count: row.Count}
	}
	return counts, nil
}

func (r *ExchangeRepositoryImpl) AverageRating(ctx context.Context) (float64, int64, error) {
	type row struct {
		Average float64
		Total   int64
	}
	var result row

	err := r.db.WithContext(ctx).
		Table("exchanges").
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(rating) AS total").
		Where("deleted_at IS NULL AND rating IS NOT NULL").
		Scan(&result).Error
	return result.Average, result.Total, err
}

func (r *ExchangeRepositoryImpl) AverageResponseTimeMs(ctx context.Context, since time.Time) (float64, error) {
	var average float64
	err := r.db.WithContext(ctx).
		Table("exchanges").
		Select("COALESCE(AVG(response_time_ms), 0)").
		Where("deleted_at IS NULL AND timestamp >= ?", since).
		Scan(&average).Error
	return average, err
}

func (r *ExchangeRepositoryImpl) RatingDistribution(ctx context.Context) ([]contract.LabelCount, error) {
	type row struct {
		Rating int
		Count  int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Table("exchanges").
		Select("rating, COUNT(*) AS count").
		Where("deleted_at IS NULL AND rating IS NOT NULL").
		Group("rating").
		Order("rating ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]contract.LabelCount, len(rows))
	for i, row := range rows {
		counts[i] = contract.LabelCount{Label: strconv.Itoa(row.Rating), Count: row.Count}
	}
	return counts, nil
}

func (r *ExchangeRepositoryImpl) countByColumn(ctx context.Context, column string, since time.Time) ([]contract.LabelCount, error) {
	type row struct {
		Label string
		Count int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Table("exchanges").
		Select(column+" AS label, COUNT(*) AS count").
		Where("deleted_at IS NULL AND timestamp >= ? AND "+column+" <> ''", since).
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]contract.LabelCount, len(rows))
	for i, row := range rows {
		counts[i] = contract.LabelCount{Label: row.Label, Count: row.Count}
	}
	return counts, nil
}

func (r *ExchangeRepositoryImpl) PersonalizationBreakdown(ctx context.Context, since time.Time) (*contract.PersonalizationStats, error) {
	ageGroups, err := r.countByColumn(ctx, "age_group", since)
	if err != nil {
		return nil, err
	}
	levels, err := r.countByColumn(ctx, "knowledge_level", since)
	if err != nil {
		return nil, err
	}
	lengths, err := r.countByColumn(ctx, "response_length", since)
	if err != nil {
		return nil, err
	}
	return &contract.PersonalizationStats{
		AgeGroups:       ageGroups,
		KnowledgeLevels: levels,
		ResponseLengths: lengths,
	}, nil
}

func (r *ExchangeRepositoryImpl) RecentQuestions(ctx context.Context, limit int) ([]*entity.Exchange, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []*model.Exchange
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
