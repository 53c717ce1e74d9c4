// Package filter selects the records visible for a facet selection.
package filter

import "attractions/internal/models"

// All disables filtering on an axis.
const All = "all"

// Selection is the pair of active facet values.
type Selection struct {
	Category string `json:"category"`
	State    string `json:"state"`
}

// Default selects everything.
func Default() Selection {
	return Selection{Category: All, State: All}
}

// Normalize maps an empty value onto All.
func (s Selection) Normalize() Selection {
	if s.Category == "" {
		s.Category = All
	}
	if s.State == "" {
		s.State = All
	}
	return s
}

// Matches compares exactly: no trimming or case folding happens here.
func (s Selection) Matches(a models.Attraction) bool {
	categoryMatch := s.Category == All || a.HasCategory(s.Category)
	stateMatch := s.State == All || (a.State != nil && *a.State == s.State)
	return categoryMatch && stateMatch
}

// Apply returns the matching records in their original order. The result
// never aliases records.
func Apply(records []models.Attraction, sel Selection) []models.Attraction {
	out := make([]models.Attraction, 0, len(records))
	for _, r := range records {
		if sel.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
