package corpus

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolvePDF(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"plain file", "catechisme.pdf", nil},
		{"nested file", "peres/augustin/confessions.pdf", nil},
		{"uppercase extension", "Somme.PDF", nil},
		{"traversal", "../secrets.pdf", ErrOutsideCorpus},
		{"nested traversal", "docs/../../etc/passwd.pdf", ErrOutsideCorpus},
		{"absolute path", filepath.Join(base, "..", "x.pdf"), ErrOutsideCorpus},
		{"not a pdf", "script.sh", ErrNotPDF},
		{"no extension", "README", ErrNotPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePDF(base, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			rel, relErr := filepath.Rel(base, got)
			if relErr != nil || rel == ".." || filepath.IsAbs(rel) {
				t.Errorf("resolved path %q is not under the corpus dir", got)
			}
		})
	}
}

func TestInventorySearch(t *testing.T) {
	inv := &Inventory{
		Documents: []Document{
			{Id: "ccc", Title: "Catéchisme de l'Église catholique", Author: "Magistère", Category: "magistere"},
			{Id: "confessions", Title: "Les Confessions", Author: "Saint Augustin", Category: "peres"},
			{Id: "somme", Title: "Somme théologique", Author: "Saint Thomas d'Aquin", Category: "scolastique"},
		},
	}

	if got := inv.Search("augustin"); len(got) != 1 || got[0].Id != "confessions" {
		t.Errorf("author search failed: %+v", got)
	}
	if got := inv.Search("SOMME"); len(got) != 1 || got[0].Id != "somme" {
		t.Errorf("case-insensitive title search failed: %+v", got)
	}
	if got := inv.Search("  "); len(got) != 3 {
		t.Errorf("blank query should return everything, got %d", len(got))
	}
}
