package saints

import (
	"testing"
	"time"
)

func testCalendar() *Calendar {
	return NewCalendar([]Saint{
		{Id: "therese-de-lisieux", Name: "Sainte Thérèse de l'Enfant-Jésus", Month: 10, Day: 1, Rank: RankMemoireObligatoire},
		{Id: "marie-mere-de-dieu", Name: "Sainte Marie, Mère de Dieu", Month: 1, Day: 1, Rank: RankSolennite},
		{Id: "remi", Name: "Saint Remi", Month: 10, Day: 1, Rank: RankMemoireFacultative},
		{Id: "gerard", Name: "Saint Gérard", Month: 10, Day: 1, Rank: RankFete},
		{Id: "invalide", Name: "Date invalide", Month: 13, Day: 40, Rank: RankFete},
	})
}

func TestByDateOrdersByLiturgicalRank(t *testing.T) {
	c := testCalendar()

	day := c.ByDate(10, 1)
	if len(day) != 3 {
		t.Fatalf("expected 3 saints on 1er octobre, got %d", len(day))
	}

	wantOrder := []string{"gerard", "therese-de-lisieux", "remi"}
	for i, id := range wantOrder {
		if day[i].Id != id {
			t.Errorf("position %d: want %s, got %s", i, id, day[i].Id)
		}
	}
}

func TestInvalidDatesAreSkipped(t *testing.T) {
	c := testCalendar()
	if _, ok := c.ById("invalide"); ok {
		t.Error("entries with impossible dates must not be indexed")
	}
	if c.Size() != 4 {
		t.Errorf("expected 4 indexed saints, got %d", c.Size())
	}
}

func TestOfDay(t *testing.T) {
	c := testCalendar()
	day := c.OfDay(time.Date(2026, time.January, 1, 10, 0, 0, 0, time.UTC))
	if len(day) != 1 || day[0].Id != "marie-mere-de-dieu" {
		t.Fatalf("unexpected saints for the 1er janvier: %+v", day)
	}
}

func TestFrenchDate(t *testing.T) {
	tests := []struct {
		month, day int
		want       string
	}{
		{1, 1, "1er janvier"},
		{8, 15, "15 août"},
		{12, 25, "25 décembre"},
		{2, 1, "1er février"},
		{0, 5, ""},
	}
	for _, tt := range tests {
		if got := FrenchDate(tt.month, tt.day); got != tt.want {
			t.Errorf("FrenchDate(%d, %d) = %q, want %q", tt.month, tt.day, got, tt.want)
		}
	}
}
