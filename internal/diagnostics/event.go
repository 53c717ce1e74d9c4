// Package diagnostics reports the conditions the page hides from the end
// user: skipped records, tile failures and dataset load failures.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"time"
)

type Kind string

const (
	KindRecordSkipped Kind = "record_skipped"
	KindTileError     Kind = "tile_error"
	KindLoadFailed    Kind = "load_failed"
	KindRenderFailed  Kind = "render_failed"
)

// Event is the published form of a diagnostic.
type Event struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Time         time.Time `json:"time"`
	AttractionID *int64    `json:"attractionId,omitempty"`
	Name         string    `json:"name,omitempty"`
	Message      string    `json:"message"`
}

// DecodeEvent parses a published event.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decoding diagnostic event: %w", err)
	}
	if ev.Kind == "" {
		return Event{}, fmt.Errorf("diagnostic event %q has no kind", ev.ID)
	}
	return ev, nil
}
