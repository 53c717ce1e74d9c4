// Package view declares the capabilities the page controller needs from the
// map widget and the card list.
package view

import (
	"errors"

	"attractions/internal/models"
)

// ErrInvalidCoordinates is returned for records without a lat/lon pair.
var ErrInvalidCoordinates = errors.New("missing or invalid coordinates")

// Marker is a point on the map tagged with an attraction id.
type Marker interface {
	ID() int64
	OpenPopup()
}

// Map is a single marker layer plus the map viewport.
type Map interface {
	// Clear removes every marker. Calling it on an empty layer is a no-op.
	Clear()
	// AddMarker adds a marker with a popup for a. It returns an error and adds
	// nothing when a has no valid coordinate pair.
	AddMarker(a models.Attraction) error
	// Focus moves the viewport to lat/lon at zoom.
	Focus(lat, lon float64, zoom int)
	// FindByID returns the displayed marker tagged with id.
	FindByID(id int64) (Marker, bool)
}

// CardRef is what a rendered card stores about its attraction.
type CardRef struct {
	ID  int64
	Lat float64
	Lon float64
}

// List is the card list next to the map.
type List interface {
	Clear()
	// RenderCard appends a card for a. It returns an error and appends nothing
	// when a has no valid coordinate pair.
	RenderCard(a models.Attraction) error
	SetNoResults(empty bool)
	// Card returns the stored reference of the rendered card for id.
	Card(id int64) (CardRef, bool)
}
