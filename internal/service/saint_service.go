package service

import (
	"context"
	"errors"
	"time"

	"fidesia-be/internal/dto"
	"fidesia-be/pkg/saints"
)

var ErrSaintNotFound = errors.New("saint introuvable")

type ISaintService interface {
	SaintsOfDay(ctx context.Context, day time.Time) (*dto.SaintsOfDayDTO, error)
	SaintsOfDate(ctx context.Context, month, day int) (*dto.SaintsOfDayDTO, error)
	SaintById(ctx context.Context, id string) (*dto.SaintDTO, error)
}

type saintService struct {
	calendar *saints.Calendar
}

func NewSaintService(calendar *saints.Calendar) ISaintService {
	return &saintService{calendar: calendar}
}

func toSaintDTO(s saints.Saint) dto.SaintDTO {
	return dto.SaintDTO{
		Id:        s.Id,
		Name:      s.Name,
		Date:      s.DateLabel(),
		Rank:      s.Rank,
		Biography: s.Biography,
		Patronage: s.Patronage,
	}
}

func (s *saintService) SaintsOfDay(ctx context.Context, day time.Time) (*dto.SaintsOfDayDTO, error) {
	return s.SaintsOfDate(ctx, int(day.Month()), day.Day())
}

func (s *saintService) SaintsOfDate(ctx context.Context, month, day int) (*dto.SaintsOfDayDTO, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, errors.New("date invalide")
	}

	found := s.calendar.ByDate(month, day)
	result := &dto.SaintsOfDayDTO{
		Date:   saints.FrenchDate(month, day),
		Saints: make([]dto.SaintDTO, len(found)),
	}
	for i, saint := range found {
		result.Saints[i] = toSaintDTO(saint)
	}
	return result, nil
}

func (s *saintService) SaintById(ctx context.Context, id string) (*dto.SaintDTO, error) {
	saint, ok := s.calendar.ById(id)
	if !ok {
		return nil, ErrSaintNotFound
	}
	result := toSaintDTO(saint)
	return &result, nil
}
