// Package page owns the loaded dataset and drives the map and list views
// from the current filter selection.
package page

import (
	"context"
	"errors"
	"sync"

	"attractions/internal/diagnostics"
	"attractions/internal/facets"
	"attractions/internal/filter"
	"attractions/internal/mapview"
	"attractions/internal/models"
	"attractions/internal/view"

	"github.com/rs/zerolog"
)

// LoadErrorMessage replaces the list when the dataset could not be loaded.
const LoadErrorMessage = "Could not load attraction data. Please check the JSON file path and format."

// ErrNotReady is returned when a session is requested before a successful load.
var ErrNotReady = errors.New("attraction data is not loaded")

// DatasetLoader is satisfied by *dataset.Loader.
type DatasetLoader interface {
	Load(ctx context.Context) ([]models.Attraction, error)
}

// Snapshot is the immutable result of a successful load.
type Snapshot struct {
	Records []models.Attraction
	Facets  facets.Facets
}

// Controller holds the page lifecycle and the dataset shared by all sessions.
type Controller struct {
	mu       sync.RWMutex
	state    State
	snapshot *Snapshot
	loadErr  error

	reporter diagnostics.Reporter
	log      zerolog.Logger
}

func NewController(reporter diagnostics.Reporter, log zerolog.Logger) *Controller {
	return &Controller{state: Loading, reporter: reporter, log: log}
}

// Start performs the single dataset load and moves the page to Ready or
// LoadFailed. It is not retried.
func (c *Controller) Start(ctx context.Context, loader DatasetLoader) error {
	records, err := loader.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		next, terr := c.state.Next(LoadErrored)
		if terr != nil {
			return terr
		}
		c.state = next
		c.loadErr = err
		c.reporter.LoadFailed(err)
		return err
	}

	next, terr := c.state.Next(LoadSucceeded)
	if terr != nil {
		return terr
	}
	c.snapshot = &Snapshot{Records: records, Facets: facets.Extract(records)}
	c.state = next
	c.log.Info().
		Int("records", len(records)).
		Int("categories", len(c.snapshot.Facets.Categories)).
		Int("states", len(c.snapshot.Facets.States)).
		Msg("Attractions ready")
	return nil
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// LoadError returns the error that moved the page to LoadFailed.
func (c *Controller) LoadError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// Snapshot returns the loaded dataset, or nil before Ready.
func (c *Controller) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// NewSession binds a fresh selection and a pair of views to the dataset.
// mapView may be nil when the map widget failed to initialize.
func (c *Controller) NewSession(mapView view.Map, listView view.List) (*Session, error) {
	snap := c.Snapshot()
	if snap == nil {
		return nil, ErrNotReady
	}
	return &Session{
		snapshot:  snap,
		selection: filter.Default(),
		state:     Ready,
		mapView:   mapView,
		listView:  listView,
		reporter:  c.reporter,
	}, nil
}

// Session is one rendering of the page: a selection plus the views it drives.
// It is not safe for concurrent use.
type Session struct {
	snapshot  *Snapshot
	selection filter.Selection
	state     State
	visible   []models.Attraction

	mapView  view.Map
	listView view.List
	reporter diagnostics.Reporter
}

func (s *Session) Selection() filter.Selection { return s.selection }

func (s *Session) Facets() facets.Facets { return s.snapshot.Facets }

// Visible returns the subset produced by the last Recompute.
func (s *Session) Visible() []models.Attraction { return s.visible }

// SetSelection applies a filter change and re-renders both views.
func (s *Session) SetSelection(sel filter.Selection) error {
	next, err := s.state.Next(FilterChanged)
	if err != nil {
		return err
	}
	s.state = next
	s.selection = sel.Normalize()
	s.Recompute()
	return nil
}

// Recompute filters the dataset with the current selection and rebuilds the
// marker layer and the card list from the same subset. A record whose marker
// cannot be added gets no card either.
func (s *Session) Recompute() []models.Attraction {
	s.visible = filter.Apply(s.snapshot.Records, s.selection)

	if s.mapView != nil {
		s.mapView.Clear()
	}
	s.listView.Clear()
	s.listView.SetNoResults(len(s.visible) == 0)

	for _, a := range s.visible {
		if _, ok := a.Position(); !ok {
			s.reporter.RecordSkipped(a)
			continue
		}
		if s.mapView != nil {
			if err := s.mapView.AddMarker(a); err != nil {
				s.reporter.RenderFailed(a, err)
				continue
			}
		}
		if err := s.listView.RenderCard(a); err != nil {
			s.reporter.RenderFailed(a, err)
		}
	}
	return s.visible
}

// SelectCard focuses the map on the card for id and opens its marker's popup.
// It reports whether a card with that id is displayed.
func (s *Session) SelectCard(id int64) bool {
	ref, ok := s.listView.Card(id)
	if !ok {
		return false
	}
	if s.mapView == nil {
		return true
	}
	s.mapView.Focus(ref.Lat, ref.Lon, mapview.FocusedZoom)
	if m, found := s.mapView.FindByID(ref.ID); found {
		m.OpenPopup()
	}
	return true
}
