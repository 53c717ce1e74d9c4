// Package facets derives the selectable filter values from a dataset.
package facets

import (
	"sort"
	"strings"

	"attractions/internal/models"
)

// Facets are the sorted, unique labels offered by the filter controls.
type Facets struct {
	Categories []string `json:"categories"`
	States     []string `json:"states"`
}

// Extract walks records once, trimming every label and dropping empty ones.
func Extract(records []models.Attraction) Facets {
	categories := make(map[string]struct{})
	states := make(map[string]struct{})

	for _, r := range records {
		if r.State != nil {
			add(states, *r.State)
		}
		for _, c := range r.Categories {
			add(categories, c)
		}
	}

	return Facets{
		Categories: sortedKeys(categories),
		States:     sortedKeys(states),
	}
}

func add(set map[string]struct{}, label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	set[label] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
