package contract

import (
	"context"
	"time"

	"fidesia-be/internal/entity"
	"fidesia-be/internal/repository/specification"
)

// CountryCount is one country's share of recorded activity.
type CountryCount struct {
	Country string
	Count   int64
}

type ActivityRepository interface {
	Create(ctx context.Context, event *entity.ActivityEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ActivityEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	CountBySessions(ctx context.Context, since time.Time) (int64, error)
	CountByCountry(ctx context.Context, since time.Time, limit int) ([]CountryCount, error)
}
