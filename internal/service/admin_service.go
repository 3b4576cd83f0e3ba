package service

import (
	"context"
	"time"

	"fidesia-be/internal/dto"
	"fidesia-be/internal/pkg/logger"
	"fidesia-be/internal/repository/contract"
	"fidesia-be/internal/repository/unitofwork"
	"fidesia-be/pkg/analytics"
)

const (
	dashboardWindow  = 30 * 24 * time.Hour // KPI window
	sessionsWindow   = 7 * 24 * time.Hour
	keywordSample    = 500 // recent questions mined for keywords
	topKeywordsLimit = 10
	topCountries     = 10
)

type IAdminService interface {
	Dashboard(ctx context.Context) (*dto.DashboardDTO, error)
	RecentQuestions(ctx context.Context, limit int) ([]dto.RecentQuestionDTO, error)
	Logs(ctx context.Context, query dto.LogQuery) ([]logger.LogEntry, error)
	LogById(ctx context.Context, id string) (*logger.LogEntry, error)
}

type adminService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewAdminService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IAdminService {
	return &adminService{
		uowFactory: uowFactory,
		log:        log,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	totalUsers, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	exchangeRepo := uow.ExchangeRepository()
	totalExchanges, err := exchangeRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := uow.ActivityRepository().CountBySessions(ctx, now.Add(-sessionsWindow))
	if err != nil {
		return nil, err
	}

	avgRating, ratingsCount, err := exchangeRepo.AverageRating(ctx)
	if err != nil {
		return nil, err
	}

	avgResponseTime, err := exchangeRepo.AverageResponseTimeMs(ctx, now.Add(-dashboardWindow))
	if err != nil {
		return nil, err
	}

	ratingCounts, err := exchangeRepo.RatingDistribution(ctx)
	if err != nil {
		return nil, err
	}

	personalization, err := exchangeRepo.PersonalizationBreakdown(ctx, now.Add(-dashboardWindow))
	if err != nil {
		return nil, err
	}

	perDay, err := exchangeRepo.CountByDay(ctx, now.Add(-dashboardWindow))
	if err != nil {
		return nil, err
	}
	exchangesPerDay := make([]dto.DailyCountDTO, len(perDay))
	for i, day := range perDay {
		exchangesPerDay[i] = dto.DailyCountDTO{
			Day:   day.Day.Format("2006-01-02"),
			Count: day.Count,
		}
	}

	recent, err := exchangeRepo.RecentQuestions(ctx, keywordSample)
	if err != nil {
		return nil, err
	}
	questions := make([]string, len(recent))
	for i, exchange := range recent {
		questions[i] = exchange.Question
	}

	countries, err := uow.ActivityRepository().CountByCountry(ctx, now.Add(-dashboardWindow), topCountries)
	if err != nil {
		return nil, err
	}
	topCountryDTOs := make([]dto.CountryCountDTO, len(countries))
	for i, country := range countries {
		topCountryDTOs[i] = dto.CountryCountDTO{Country: country.Country, Count: country.Count}
	}

	passageRepo := uow.PassageRepository()
	corpusPassages, err := passageRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	corpusDocuments, err := passageRepo.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardDTO{
		TotalUsers:        totalUsers,
		TotalExchanges:    totalExchanges,
		SessionsLast7d:    sessions,
		AverageRating:     avgRating,
		RatingsCount:      ratingsCount,
		AvgResponseTimeMs: avgResponseTime,
		CorpusDocuments:   corpusDocuments,
		CorpusPassages:    corpusPassages,
		ExchangesPerDay:   exchangesPerDay,
		RatingCounts:      labelCounts(ratingCounts),
		TopKeywords:       analytics.TopKeywords(questions, topKeywordsLimit),
		TopCountries:      topCountryDTOs,
		Personalization: dto.PersonalizationDTO{
			AgeGroups:       labelCounts(personalization.AgeGroups),
			KnowledgeLevels: labelCounts(personalization.KnowledgeLevels),
			ResponseLengths: labelCounts(personalization.ResponseLengths),
		},
	}, nil
}

func labelCounts(counts []contract.LabelCount) []dto.LabelCountDTO {
	out := make([]dto.LabelCountDTO, len(counts))
	for i, c := range counts {
		out[i] = dto.LabelCountDTO{Label: c.Label, Count: c.Count}
	}
	return out
}

func (s *adminService) RecentQuestions(ctx context.Context, limit int) ([]dto.RecentQuestionDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	exchanges, err := uow.ExchangeRepository().RecentQuestions(ctx, limit)
	if err != nil {
		return nil, err
	}

	recent := make([]dto.RecentQuestionDTO, len(exchanges))
	for i, exchange := range exchanges {
		recent[i] = dto.RecentQuestionDTO{
			Id:        exchange.Id,
			Question:  exchange.Question,
			Rating:    exchange.Rating,
			Status:    string(exchange.Status),
			Timestamp: exchange.Timestamp,
		}
	}
	return recent, nil
}

func (s *adminService) Logs(ctx context.Context, query dto.LogQuery) ([]logger.LogEntry, error) {
	limit := query.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	return s.log.GetLogs(query.Level, limit, offset)
}

func (s *adminService) LogById(ctx context.Context, id string) (*logger.LogEntry, error) {
	return s.log.GetLogById(id)
}
