package sources

import (
	"sort"

	"fidesia-be/pkg/rag"
)

// Reference is one citable source document of an answer: the best scoring
// passage of each distinct document, with the passage text dropped.
// References are created fresh per exchange and never mutated afterwards.
type Reference struct {
	FileName     string  `json:"file_name"`
	RelativePath string  `json:"relative_path"`
	Score        float64 `json:"score"`
}

// Resolve collapses the retrieved passages into one Reference per distinct
// document. The document key is the file name (relative path when the file
// name is missing); within a document only the maximum score is kept.
// Output is sorted by score descending; equal scores keep the retrieval
// order of their first passage (stable).
func Resolve(passages []rag.Passage) []Reference {
	refs := make([]Reference, 0, len(passages))
	index := make(map[string]int, len(passages))

	for _, p := range passages {
		key := p.DocumentKey()
		if key == "" {
			continue
		}
		if i, seen := index[key]; seen {
			if p.Score > refs[i].Score {
				refs[i].Score = p.Score
			}
			continue
		}
		index[key] = len(refs)
		refs = append(refs, Reference{
			FileName:     p.FileName,
			RelativePath: p.RelativePath,
			Score:        p.Score,
		})
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Score > refs[j].Score
	})
	return refs
}
