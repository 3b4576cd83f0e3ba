package dto

import "fidesia-be/pkg/corpus"

type CorpusInventoryDTO struct {
	Documents  []corpus.Document `json:"documents"`
	Categories []string          `json:"categories"`
	Total      int               `json:"total"`
}

type SaintDTO struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Rank      string `json:"rank"`
	Biography string `json:"biography,omitempty"`
	Patronage string `json:"patronage,omitempty"`
}

type SaintsOfDayDTO struct {
	Date   string     `json:"date"`
	Saints []SaintDTO `json:"saints"`
}
