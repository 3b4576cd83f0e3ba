package dto

import (
	"time"

	"fidesia-be/pkg/analytics"
)

// DashboardDTO is the admin landing view: usage, quality and corpus
// KPIs in one payload.
type DashboardDTO struct {
	TotalUsers        int64                    `json:"total_users"`
	TotalExchanges    int64                    `json:"total_exchanges"`
	SessionsLast7d    int64                    `json:"sessions_last_7d"`
	AverageRating     float64                  `json:"average_rating"`
	RatingsCount      int64                    `json:"ratings_count"`
	AvgResponseTimeMs float64                  `json:"avg_response_time_ms"`
	CorpusDocuments   int64                    `json:"corpus_documents"`
	CorpusPassages    int64                    `json:"corpus_passages"`
	ExchangesPerDay   []DailyCountDTO          `json:"exchanges_per_day"`
	RatingCounts      []LabelCountDTO          `json:"rating_counts"`
	TopKeywords       []analytics.KeywordCount `json:"top_keywords"`
	TopCountries      []CountryCountDTO        `json:"top_countries"`
	Personalization   PersonalizationDTO       `json:"personalization"`
}

type LabelCountDTO struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// PersonalizationDTO shows which audience settings users actually pick.
type PersonalizationDTO struct {
	AgeGroups       []LabelCountDTO `json:"age_groups"`
	KnowledgeLevels []LabelCountDTO `json:"knowledge_levels"`
	ResponseLengths []LabelCountDTO `json:"response_lengths"`
}

type DailyCountDTO struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type CountryCountDTO struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

type RecentQuestionDTO struct {
	Id        int64     `json:"id"`
	Question  string    `json:"question"`
	Rating    *int      `json:"rating,omitempty"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type LogQuery struct {
	Level  string `query:"level"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}
