package diagnostics

import (
	"context"
	"encoding/json"
	"time"

	"attractions/internal/mapview"
	"attractions/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Reporter receives every diagnostic the page produces.
type Reporter interface {
	RecordSkipped(a models.Attraction)
	TileError(err *mapview.TileError)
	LoadFailed(err error)
	RenderFailed(a models.Attraction, err error)
}

// Publisher is satisfied by *kafkaclient.Producer.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// LogReporter writes each diagnostic to the logger and, when a publisher is
// set, publishes it as an Event.
type LogReporter struct {
	log       zerolog.Logger
	publisher Publisher
	now       func() time.Time
}

func NewLogReporter(log zerolog.Logger, publisher Publisher) *LogReporter {
	return &LogReporter{log: log, publisher: publisher, now: time.Now}
}

func (r *LogReporter) RecordSkipped(a models.Attraction) {
	r.log.Warn().Int64("id", a.ID).Str("name", a.Name).Msg("Skipping attraction due to missing/invalid coordinates")
	id := a.ID
	r.publish(Event{Kind: KindRecordSkipped, AttractionID: &id, Name: a.Name, Message: "missing or invalid coordinates"})
}

func (r *LogReporter) TileError(err *mapview.TileError) {
	r.log.Error().Str("url", err.URL).Str("coords", err.Coords).Str("reason", err.Reason).Msg("Tile error")
	r.publish(Event{Kind: KindTileError, Message: err.Error()})
}

func (r *LogReporter) LoadFailed(err error) {
	r.log.Error().Err(err).Msg("Error loading attractions data")
	r.publish(Event{Kind: KindLoadFailed, Message: err.Error()})
}

func (r *LogReporter) RenderFailed(a models.Attraction, err error) {
	r.log.Error().Err(err).Int64("id", a.ID).Str("name", a.Name).Msg("Failed to render attraction")
	id := a.ID
	r.publish(Event{Kind: KindRenderFailed, AttractionID: &id, Name: a.Name, Message: err.Error()})
}

func (r *LogReporter) publish(ev Event) {
	if r.publisher == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.Time = r.now().UTC()

	data, err := json.Marshal(ev)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to encode diagnostic event")
		return
	}
	if err := r.publisher.Publish(context.Background(), []byte(ev.Kind), data); err != nil {
		r.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("Failed to publish diagnostic event")
	}
}
