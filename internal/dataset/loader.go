// Package dataset loads the attraction records the page is built from.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"attractions/internal/models"

	"github.com/rs/zerolog"
)

// Loader performs the single dataset fetch at startup.
type Loader struct {
	source Source
	log    zerolog.Logger
}

func NewLoader(source Source, log zerolog.Logger) *Loader {
	return &Loader{source: source, log: log}
}

// Load fetches the document once and decodes it. Records are returned in
// document order without validation. A non-success status surfaces as
// *TransportError, malformed content as *ParseError.
func (l *Loader) Load(ctx context.Context) ([]models.Attraction, error) {
	l.log.Info().Str("source", l.source.Name()).Msg("Loading attractions")

	data, err := l.source.Fetch(ctx)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, fmt.Errorf("fetching %s: %w", l.source.Name(), err)
	}

	records, err := Parse(data)
	if err != nil {
		return nil, &ParseError{Source: l.source.Name(), Err: err}
	}

	l.log.Info().Int("records", len(records)).Msg("Loaded attractions")
	return records, nil
}

// Parse decodes a JSON array of attraction objects.
func Parse(data []byte) ([]models.Attraction, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("document is not a JSON array")
	}

	var records []models.Attraction
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Attraction{}
	}
	return records, nil
}
