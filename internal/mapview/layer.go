// Package mapview keeps the server-side model of the map widget: its
// settings, the marker layer and the current viewport.
package mapview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"attractions/internal/models"
	"attractions/internal/view"

	"github.com/peterstace/simplefeatures/geom"
)

const (
	InitialZoom = 4
	FocusedZoom = 13
)

// InitialCenter is the overview position, the middle of the contiguous US.
var InitialCenter = models.Coordinates{Lat: 39.8283, Lon: -98.5795}

// InitError reports map settings the widget cannot be built from.
type InitError struct {
	Err error
}

func (e *InitError) Error() string { return "map initialization failed: " + e.Err.Error() }

func (e *InitError) Unwrap() error { return e.Err }

// Settings configure the tile layer and the initial viewport.
type Settings struct {
	TileURL     string
	Attribution string
	MaxZoom     int
	Center      models.Coordinates
	Zoom        int
}

// DefaultSettings returns the OpenStreetMap tile layer at the overview zoom.
func DefaultSettings() Settings {
	return Settings{
		TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		MaxZoom:     19,
		Center:      InitialCenter,
		Zoom:        InitialZoom,
	}
}

// Validate reports the first setting the widget would reject.
func (s Settings) Validate() error {
	for _, p := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(s.TileURL, p) {
			return &InitError{Err: fmt.Errorf("tile url %q lacks %s", s.TileURL, p)}
		}
	}
	if s.MaxZoom <= 0 {
		return &InitError{Err: fmt.Errorf("max zoom %d must be positive", s.MaxZoom)}
	}
	if s.Zoom < 0 || s.Zoom > s.MaxZoom {
		return &InitError{Err: fmt.Errorf("zoom %d outside 0..%d", s.Zoom, s.MaxZoom)}
	}
	if !validLatLon(s.Center.Lat, s.Center.Lon) {
		return &InitError{Err: fmt.Errorf("center %v out of range", s.Center)}
	}
	return nil
}

func validLatLon(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

var popupTmpl = template.Must(template.New("popup").Parse(
	`<h4>{{.Name}}</h4><p>{{.Description}}</p><p><strong>Location:</strong> {{.Location}}</p>`))

// Marker is one attraction on the layer.
type Marker struct {
	id       int64
	Position models.Coordinates
	Alt      string
	Popup    template.HTML
	open     bool
}

func (m *Marker) ID() int64 { return m.id }

func (m *Marker) OpenPopup() { m.open = true }

// Layer is the marker layer plus viewport state of one rendered page.
type Layer struct {
	settings Settings
	markers  []*Marker
	center   models.Coordinates
	zoom     int
}

var _ view.Map = (*Layer)(nil)

// New validates settings and returns an empty layer at the initial view.
func New(settings Settings) (*Layer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Layer{
		settings: settings,
		center:   settings.Center,
		zoom:     settings.Zoom,
	}, nil
}

func (l *Layer) Settings() Settings { return l.settings }

func (l *Layer) Clear() {
	l.markers = nil
}

func (l *Layer) AddMarker(a models.Attraction) error {
	pos, ok := a.Position()
	if !ok {
		return view.ErrInvalidCoordinates
	}

	var buf bytes.Buffer
	if err := popupTmpl.Execute(&buf, a); err != nil {
		return fmt.Errorf("rendering popup for %s: %w", a, err)
	}

	l.markers = append(l.markers, &Marker{
		id:       a.ID,
		Position: pos,
		Alt:      a.Name + " marker",
		Popup:    template.HTML(buf.String()),
	})
	return nil
}

func (l *Layer) Focus(lat, lon float64, zoom int) {
	l.center = models.Coordinates{Lat: lat, Lon: lon}
	l.zoom = zoom
}

func (l *Layer) FindByID(id int64) (view.Marker, bool) {
	for _, m := range l.markers {
		if m.id == id {
			return m, true
		}
	}
	return nil, false
}

// Markers returns the markers in insertion order.
func (l *Layer) Markers() []*Marker {
	return l.markers
}

// View returns the current viewport.
func (l *Layer) View() (models.Coordinates, int) {
	return l.center, l.zoom
}

// OpenPopupID returns the id of the marker whose popup is open, if any.
func (l *Layer) OpenPopupID() (int64, bool) {
	for _, m := range l.markers {
		if m.open {
			return m.id, true
		}
	}
	return 0, false
}

// GeoJSON encodes the layer as a FeatureCollection of points. Positions are
// written lon/lat as GeoJSON requires.
func (l *Layer) GeoJSON() ([]byte, error) {
	features := make([]geom.GeoJSONFeature, 0, len(l.markers))
	for _, m := range l.markers {
		pt := geom.NewPoint(geom.Coordinates{
			XY:   geom.XY{X: m.Position.Lon, Y: m.Position.Lat},
			Type: geom.DimXY,
		})
		features = append(features, geom.GeoJSONFeature{
			Geometry: pt.AsGeometry(),
			ID:       m.id,
			Properties: map[string]interface{}{
				"alt":   m.Alt,
				"popup": string(m.Popup),
				"open":  m.open,
			},
		})
	}
	return json.Marshal(geom.GeoJSONFeatureCollection(features))
}
