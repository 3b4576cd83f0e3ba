package sources

import (
	"testing"

	"fidesia-be/pkg/rag"
)

func TestResolveDeduplicatesByDocument(t *testing.T) {
	tests := []struct {
		name     string
		passages []rag.Passage
		want     []Reference
	}{
		{
			name:     "empty input",
			passages: nil,
			want:     []Reference{},
		},
		{
			name: "single document keeps best score",
			passages: []rag.Passage{
				{FileName: "somme_theologique.pdf", RelativePath: "aquin/somme_theologique.pdf", Score: 0.71},
				{FileName: "somme_theologique.pdf", RelativePath: "aquin/somme_theologique.pdf", Score: 0.88},
				{FileName: "somme_theologique.pdf", RelativePath: "aquin/somme_theologique.pdf", Score: 0.60},
			},
			want: []Reference{
				{FileName: "somme_theologique.pdf", RelativePath: "aquin/somme_theologique.pdf", Score: 0.88},
			},
		},
		{
			name: "multiple documents sorted by score desc",
			passages: []rag.Passage{
				{FileName: "confessions.pdf", Score: 0.52},
				{FileName: "catechisme.pdf", Score: 0.91},
				{FileName: "confessions.pdf", Score: 0.77},
				{FileName: "imitation.pdf", Score: 0.64},
			},
			want: []Reference{
				{FileName: "catechisme.pdf", Score: 0.91},
				{FileName: "confessions.pdf", Score: 0.77},
				{FileName: "imitation.pdf", Score: 0.64},
			},
		},
		{
			name: "equal scores preserve retrieval order",
			passages: []rag.Passage{
				{FileName: "b.pdf", Score: 0.5},
				{FileName: "a.pdf", Score: 0.5},
				{FileName: "c.pdf", Score: 0.5},
			},
			want: []Reference{
				{FileName: "b.pdf", Score: 0.5},
				{FileName: "a.pdf", Score: 0.5},
				{FileName: "c.pdf", Score: 0.5},
			},
		},
		{
			name: "relative path used when file name missing",
			passages: []rag.Passage{
				{RelativePath: "peres/augustin.pdf", Score: 0.4},
				{RelativePath: "peres/augustin.pdf", Score: 0.3},
			},
			want: []Reference{
				{RelativePath: "peres/augustin.pdf", Score: 0.4},
			},
		},
		{
			name: "passages without identity are dropped",
			passages: []rag.Passage{
				{Score: 0.9},
				{FileName: "bible.pdf", Score: 0.3},
			},
			want: []Reference{
				{FileName: "bible.pdf", Score: 0.3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.passages)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d references, want %d (%+v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("reference %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolveScoreIsMaxPerDocument(t *testing.T) {
	passages := []rag.Passage{
		{FileName: "x.pdf", Score: 0.10},
		{FileName: "y.pdf", Score: 0.95},
		{FileName: "x.pdf", Score: 0.80},
		{FileName: "y.pdf", Score: 0.20},
	}

	refs := Resolve(passages)
	byName := make(map[string]float64, len(refs))
	for _, r := range refs {
		byName[r.FileName] = r.Score
	}

	if byName["x.pdf"] != 0.80 {
		t.Errorf("x.pdf score = %v, want 0.80", byName["x.pdf"])
	}
	if byName["y.pdf"] != 0.95 {
		t.Errorf("y.pdf score = %v, want 0.95", byName["y.pdf"])
	}
}
