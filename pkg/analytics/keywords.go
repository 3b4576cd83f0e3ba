package analytics

import (
	"sort"
	"strings"
	"unicode"
)

// French stopwords excluded from keyword counts. Question words are
// included: they dominate raw counts without carrying any topic.
var stopwords = map[string]bool{
	"alors": true, "aussi": true, "autre": true, "autres": true,
	"avec": true, "avoir": true, "bien": true, "cela": true,
	"cette": true, "ceux": true, "chaque": true, "comme": true,
	"comment": true, "dans": true, "depuis": true, "deux": true,
	"donc": true, "elle": true, "elles": true, "encore": true,
	"entre": true,
	"est-ce": true, "être": true, "étais": true, "était": true,
	"faire": true, "fait": true, "faut": true, "ils": true,
	"leur": true, "leurs": true, "lors": true, "mais": true,
	"même": true, "mes": true, "mon": true, "nos": true,
	"notre": true, "nous": true, "peut": true, "peut-on": true,
	"plus": true, "pour": true, "pourquoi": true, "quand": true,
	"quel": true, "quelle": true, "quelles": true, "quels": true,
	"qu'est-ce": true, "sans": true, "sont": true, "suis": true,
	"sur": true, "tous": true, "tout": true, "toute": true,
	"toutes": true, "très": true, "une": true, "vous": true,
	"votre": true, "vos": true,
}

// KeywordCount is one keyword with its frequency.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// TopKeywords extracts the most frequent meaningful words from a set of
// questions. Words shorter than 4 characters and French stopwords are
// ignored; ties break alphabetically for stable output.
func TopKeywords(questions []string, limit int) []KeywordCount {
	if limit <= 0 {
		limit = 10
	}

	counts := make(map[string]int)
	for _, question := range questions {
		for _, word := range tokenize(question) {
			if len([]rune(word)) < 4 || stopwords[word] {
				continue
			}
			counts[word]++
		}
	}

	keywords := make([]KeywordCount, 0, len(counts))
	for word, count := range counts {
		keywords = append(keywords, KeywordCount{Keyword: word, Count: count})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Keyword < keywords[j].Keyword
	})

	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}

// tokenize lowercases and splits on anything that is not a letter, an
// apostrophe or a hyphen, then strips leading elisions (l', d', ...).
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\'' && r != '’' && r != '-'
	})

	words := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.Trim(field, "'’-")
		for _, sep := range []string{"'", "’"} {
			if idx := strings.Index(field, sep); idx >= 0 && idx <= 2 {
				field = field[idx+len(sep):]
			}
		}
		if field != "" {
			words = append(words, field)
		}
	}
	return words
}
