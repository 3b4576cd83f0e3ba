package saints

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Saint is one entry of the liturgical calendar.
type Saint struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Month     int    `json:"month"`
	Day       int    `json:"day"`
	Rank      string `json:"rank"`
	Biography string `json:"biography,omitempty"`
	Patronage string `json:"patronage,omitempty"`
}

// Liturgical ranks, highest first. Unknown ranks sort last.
const (
	RankSolennite          = "Solennité"
	RankFete               = "Fête"
	RankMemoireObligatoire = "Mémoire obligatoire"
	RankMemoireFacultative = "Mémoire facultative"
)

var rankOrder = map[string]int{
	RankSolennite:          0,
	RankFete:               1,
	RankMemoireObligatoire: 2,
	RankMemoireFacultative: 3,
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// Calendar is the in-memory saints calendar, loaded once at startup.
type Calendar struct {
	byDate map[[2]int][]Saint
	byId   map[string]Saint
}

// Load reads the calendar data file and indexes it by date and id.
func Load(path string) (*Calendar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read saints data: %w", err)
	}

	var saints []Saint
	if err := json.Unmarshal(raw, &saints); err != nil {
		return nil, fmt.Errorf("parse saints data: %w", err)
	}

	return NewCalendar(saints), nil
}

func NewCalendar(saints []Saint) *Calendar {
	c := &Calendar{
		byDate: make(map[[2]int][]Saint),
		byId:   make(map[string]Saint),
	}
	for _, s := range saints {
		if s.Month < 1 || s.Month > 12 || s.Day < 1 || s.Day > 31 {
			continue
		}
		key := [2]int{s.Month, s.Day}
		c.byDate[key] = append(c.byDate[key], s)
		if s.Id != "" {
			c.byId[s.Id] = s
		}
	}
	// highest rank first, stable within a rank
	for key := range c.byDate {
		day := c.byDate[key]
		sort.SliceStable(day, func(i, j int) bool {
			return rankWeight(day[i].Rank) < rankWeight(day[j].Rank)
		})
	}
	return c
}

func rankWeight(rank string) int {
	if w, ok := rankOrder[rank]; ok {
		return w
	}
	return len(rankOrder)
}

// ByDate returns the saints of a calendar day, highest rank first.
func (c *Calendar) ByDate(month, day int) []Saint {
	return c.byDate[[2]int{month, day}]
}

// ById returns one saint by its identifier.
func (c *Calendar) ById(id string) (Saint, bool) {
	s, ok := c.byId[id]
	return s, ok
}

// OfDay returns the saints celebrated on the given date.
func (c *Calendar) OfDay(t time.Time) []Saint {
	return c.ByDate(int(t.Month()), t.Day())
}

// Size returns the number of indexed saints.
func (c *Calendar) Size() int {
	return len(c.byId)
}

// FrenchDate formats a calendar day the French way: "1er janvier",
// "15 août".
func FrenchDate(month, day int) string {
	if month < 1 || month > 12 {
		return ""
	}
	if day == 1 {
		return "1er " + frenchMonths[month-1]
	}
	return fmt.Sprintf("%d %s", day, frenchMonths[month-1])
}

// DateLabel is the display form of a saint's feast day.
func (s Saint) DateLabel() string {
	return FrenchDate(s.Month, s.Day)
}
