package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Document is one corpus entry of the inventory file.
type Document struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Category     string `json:"category"`
	RelativePath string `json:"relative_path"`
	Year         int    `json:"year,omitempty"`
}

// Inventory is the browsable catalogue of the corpus.
type Inventory struct {
	Documents []Document
	byId      map[string]Document
}

// LoadInventory reads and indexes the inventory JSON file. Documents
// are sorted by category then title for stable listings.
func LoadInventory(path string) (*Inventory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}

	var docs []Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Category != docs[j].Category {
			return docs[i].Category < docs[j].Category
		}
		return docs[i].Title < docs[j].Title
	})

	inv := &Inventory{
		Documents: docs,
		byId:      make(map[string]Document, len(docs)),
	}
	for _, d := range docs {
		if d.Id != "" {
			inv.byId[d.Id] = d
		}
	}
	return inv, nil
}

// ById returns one document of the inventory.
func (inv *Inventory) ById(id string) (Document, bool) {
	d, ok := inv.byId[id]
	return d, ok
}

// Categories returns the distinct categories in listing order.
func (inv *Inventory) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, d := range inv.Documents {
		if d.Category == "" || seen[d.Category] {
			continue
		}
		seen[d.Category] = true
		categories = append(categories, d.Category)
	}
	return categories
}

// Search filters documents whose title or author contains the query,
// case-insensitively.
func (inv *Inventory) Search(query string) []Document {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return inv.Documents
	}
	var matches []Document
	for _, d := range inv.Documents {
		if strings.Contains(strings.ToLower(d.Title), query) ||
			strings.Contains(strings.ToLower(d.Author), query) {
			matches = append(matches, d)
		}
	}
	return matches
}
