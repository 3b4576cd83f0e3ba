package analytics

import (
	"reflect"
	"testing"
)

func TestTopKeywords(t *testing.T) {
	questions := []string{
		"Qu'est-ce que la grâce sanctifiante ?",
		"Comment la grâce agit-elle dans les sacrements ?",
		"Pourquoi les sacrements sont-ils importants ?",
	}

	got := TopKeywords(questions, 3)

	want := []KeywordCount{
		{Keyword: "grâce", Count: 2},
		{Keyword: "sacrements", Count: 2},
		{Keyword: "agit-elle", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopKeywords = %+v, want %+v", got, want)
	}
}

func TestTopKeywordsSkipsShortWordsAndStopwords(t *testing.T) {
	got := TopKeywords([]string{"Comment peut-on bien faire pour Dieu ?"}, 10)
	for _, kw := range got {
		switch kw.Keyword {
		case "comment", "peut-on", "bien", "faire", "pour":
			t.Errorf("stopword %q should not appear", kw.Keyword)
		}
	}
	if len(got) != 1 || got[0].Keyword != "dieu" {
		t.Errorf("expected only \"dieu\", got %+v", got)
	}
}

func TestTopKeywordsHandlesElisions(t *testing.T) {
	got := TopKeywords([]string{"L'Église et l'Église encore"}, 10)
	if len(got) != 1 || got[0].Keyword != "église" || got[0].Count != 2 {
		t.Errorf("elided article should be stripped, got %+v", got)
	}
}

func TestTopKeywordsEmptyInput(t *testing.T) {
	if got := TopKeywords(nil, 5); len(got) != 0 {
		t.Errorf("expected no keywords, got %+v", got)
	}
}
