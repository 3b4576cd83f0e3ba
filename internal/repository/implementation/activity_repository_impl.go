package implementation

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fidesia-be/internal/entity"
	"fidesia-be/internal/mapper"
	"fidesia-be/internal/model"
	"fidesia-be/internal/repository/contract"
	"fidesia-be/internal/repository/specification"
)

type ActivityRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ActivityMapper
}

func NewActivityRepository(db *gorm.DB) contract.ActivityRepository {
	return &ActivityRepositoryImpl{
		db:     db,
		mapper: mapper.NewActivityMapper(),
	}
}

func (r *ActivityRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ActivityRepositoryImpl) Create(ctx context.Context, event *entity.ActivityEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *ActivityRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ActivityEvent, error) {
	var models []*model.ActivityEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ActivityRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ActivityEvent{}).Count(&count).Error
	return count, err
}

func (r *ActivityRepositoryImpl) CountBySessions(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ActivityEvent{}).
		Where("created_at >= ?", since).
		Distinct("session_id").
		Count(&count).Error
	return count, err
}

func (r *ActivityRepositoryImpl) CountByCountry(ctx context.Context, since time.Time, limit int) ([]contract.CountryCount, error) {
	if limit <= 0 {
		limit = 10
	}
	type row struct {
		Country string
		Count   int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Table("activity_events").
		Select("country, COUNT(*) AS count").
		Where("created_at >= ? AND country <> ''", since).
		Group("country").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]contract.CountryCount, len(rows))
	for i, row := range rows {
		counts[i] = contract.CountryCount{Country: row.Country, Count: row.Count}
	}
	return counts, nil
}
