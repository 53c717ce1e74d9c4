package mapview

import "fmt"

// TileError is a tile the browser widget failed to load. It never
// interrupts the map; the page only shows a banner.
type TileError struct {
	URL    string `json:"url"`
	Coords string `json:"coords,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (e *TileError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("tile %s failed to load", e.URL)
	}
	return fmt.Sprintf("tile %s failed to load: %s", e.URL, e.Reason)
}
