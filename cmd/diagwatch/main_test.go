package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"attractions/internal/diagnostics"
	"attractions/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestWatch(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := int64(3)

	events := make(chan *service.Decoded[diagnostics.Event], 3)
	events <- &service.Decoded[diagnostics.Event]{Data: diagnostics.Event{Kind: diagnostics.KindRecordSkipped, Time: ts, AttractionID: &id, Name: "Nowhere", Message: "missing or invalid coordinates"}}
	events <- &service.Decoded[diagnostics.Event]{Data: diagnostics.Event{Kind: diagnostics.KindTileError, Time: ts, Message: "tile failed"}}
	events <- &service.Decoded[diagnostics.Event]{Data: diagnostics.Event{Kind: diagnostics.KindLoadFailed, Time: ts, Message: "boom"}}
	close(events)

	var out bytes.Buffer
	watch(events, &out, []string{"record_skipped", "load_failed"})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "2024-05-01T12:00:00Z record_skipped missing or invalid coordinates (id=3 Nowhere)", lines[0])
	assert.Contains(t, lines[1], "load_failed")
	assert.Contains(t, lines[1], "boom")
}

func TestWatch_NoFilter(t *testing.T) {
	events := make(chan *service.Decoded[diagnostics.Event], 1)
	events <- &service.Decoded[diagnostics.Event]{Data: diagnostics.Event{Kind: diagnostics.KindTileError, Message: "tile failed"}}
	close(events)

	var out bytes.Buffer
	watch(events, &out, nil)
	assert.Contains(t, out.String(), "tile_error")
}
