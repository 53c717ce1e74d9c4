package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Attraction is a single point of interest as found in the dataset.
// Fields that are absent or of the wrong JSON type decode to their zero
// value; nothing is validated at load time.
type Attraction struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	State       *string   `json:"state,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position returns the record's coordinates when it carries exactly two.
func (a Attraction) Position() (Coordinates, bool) {
	if len(a.Coordinates) != 2 {
		return Coordinates{}, false
	}
	return Coordinates{Lat: a.Coordinates[0], Lon: a.Coordinates[1]}, true
}

// Region returns the state label, or "" when the record has none.
func (a Attraction) Region() string {
	if a.State == nil {
		return ""
	}
	return *a.State
}

// HasCategory reports whether category is one of the record's categories.
func (a Attraction) HasCategory(category string) bool {
	for _, c := range a.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func (a Attraction) String() string {
	return fmt.Sprintf("%s (id=%d)", a.Name, a.ID)
}

type rawAttraction struct {
	ID          json.RawMessage `json:"id"`
	Name        json.RawMessage `json:"name"`
	Description json.RawMessage `json:"description"`
	Location    json.RawMessage `json:"location"`
	State       json.RawMessage `json:"state"`
	Categories  json.RawMessage `json:"categories"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// UnmarshalJSON decodes an attraction leniently: only the outer shape (an
// object) is required. A field of the wrong type decodes to its zero value.
func (a *Attraction) UnmarshalJSON(data []byte) error {
	var raw rawAttraction
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Attraction{
		ID:          decodeID(raw.ID),
		Name:        decodeString(raw.Name),
		Description: decodeString(raw.Description),
		Location:    decodeString(raw.Location),
	}

	var state *string
	if len(raw.State) > 0 && json.Unmarshal(raw.State, &state) == nil {
		a.State = state
	}

	var cats []json.RawMessage
	if len(raw.Categories) > 0 && json.Unmarshal(raw.Categories, &cats) == nil {
		for _, elem := range cats {
			var c *string
			if json.Unmarshal(elem, &c) == nil && c != nil {
				a.Categories = append(a.Categories, *c)
			}
		}
	}

	a.Coordinates = decodeCoordinates(raw.Coordinates)
	return nil
}

// decodeID returns the integer id, or 0 when it is absent, not a number or
// not a whole number.
func decodeID(raw json.RawMessage) int64 {
	var n json.Number
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil || n == "" {
		return 0
	}
	if id, err := n.Int64(); err == nil {
		return id
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0
	}
	return int64(f)
}

// decodeCoordinates keeps the array only when every element is a number.
func decodeCoordinates(raw json.RawMessage) []float64 {
	var elems []*float64
	if len(raw) == 0 || json.Unmarshal(raw, &elems) != nil || elems == nil {
		return nil
	}
	coords := make([]float64, 0, len(elems))
	for _, e := range elems {
		if e == nil {
			return nil
		}
		coords = append(coords, *e)
	}
	return coords
}

func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
