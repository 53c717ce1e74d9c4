// Package web serves the attractions page and its JSON API.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"attractions/internal/diagnostics"
	"attractions/internal/filter"
	"attractions/internal/listview"
	"attractions/internal/mapview"
	"attractions/internal/page"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// MapErrorMessage replaces the map when the widget cannot be initialized.
const MapErrorMessage = "Failed to initialize the map. Please ensure Leaflet library is loaded correctly."

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Server wires the page controller to HTTP.
type Server struct {
	controller  *page.Controller
	mapSettings mapview.Settings
	reporter    diagnostics.Reporter
	limiter     *RateLimiter
	log         zerolog.Logger
}

func NewServer(controller *page.Controller, mapSettings mapview.Settings, reporter diagnostics.Reporter, limiter *RateLimiter, log zerolog.Logger) *Server {
	return &Server{
		controller:  controller,
		mapSettings: mapSettings,
		reporter:    reporter,
		limiter:     limiter,
		log:         log,
	}
}

// Handler returns the router wrapped in CORS, security headers and logging.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	// Routes that run a filter pass may emit diagnostics, so they share the
	// per-IP budget with the tile error beacon.
	router.GET("/", s.limiter.Limit(s.Index))
	router.GET("/health", s.Health)
	router.GET("/api/attractions", s.limiter.Limit(s.Attractions))
	router.GET("/api/facets", s.Facets)
	router.GET("/api/markers", s.limiter.Limit(s.Markers))
	router.POST("/api/tile-errors", s.limiter.Limit(s.TileErrors))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	return loggingMiddleware(s.log, securityHeaders(corsHandler))
}

func (s *Server) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	respondWithJSON(w, http.StatusOK, map[string]string{"state": s.controller.State().String()})
}

func selectionFromQuery(q url.Values) filter.Selection {
	return filter.Selection{Category: q.Get("category"), State: q.Get("state")}.Normalize()
}

// newMap builds the marker layer. A nil view means the widget failed to
// initialize; the error has already been logged.
func (s *Server) newMap() (*mapview.Layer, error) {
	layer, err := mapview.New(s.mapSettings)
	if err != nil {
		s.log.Error().Err(err).Msg("Error initializing map")
		return nil, err
	}
	return layer, nil
}

type rendered struct {
	session *page.Session
	layer   *mapview.Layer
	list    *listview.List
}

// render runs one filter pass for the request's selection.
func (s *Server) render(sel filter.Selection) (*rendered, error) {
	layer, _ := s.newMap()
	list := listview.New(func(id int64) string {
		q := url.Values{}
		q.Set("category", sel.Category)
		q.Set("state", sel.State)
		q.Set("focus", strconv.FormatInt(id, 10))
		return "/?" + q.Encode()
	})

	var session *page.Session
	var err error
	if layer != nil {
		session, err = s.controller.NewSession(layer, list)
	} else {
		session, err = s.controller.NewSession(nil, list)
	}
	if err != nil {
		return nil, err
	}

	if sel == filter.Default() {
		session.Recompute()
	} else if err := session.SetSelection(sel); err != nil {
		return nil, err
	}
	return &rendered{session: session, layer: layer, list: list}, nil
}

func (s *Server) notReady(w http.ResponseWriter) {
	if s.controller.State() == page.LoadFailed {
		respondWithError(w, http.StatusServiceUnavailable, page.LoadErrorMessage)
		return
	}
	respondWithError(w, http.StatusServiceUnavailable, "Attraction data is still loading")
}

// attractionsResponse carries the filtered subset as loaded, including
// records without coordinates. Rendered counts the cards actually shown.
type attractionsResponse struct {
	Selection   filter.Selection `json:"selection"`
	Count       int              `json:"count"`
	Rendered    int              `json:"rendered"`
	Attractions any              `json:"attractions"`
}

func (s *Server) Attractions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	out, err := s.render(selectionFromQuery(r.URL.Query()))
	if err != nil {
		s.notReady(w)
		return
	}
	visible := out.session.Visible()
	respondWithJSON(w, http.StatusOK, attractionsResponse{
		Selection:   out.session.Selection(),
		Count:       len(visible),
		Rendered:    len(out.list.Cards()),
		Attractions: visible,
	})
}

func (s *Server) Facets(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	snap := s.controller.Snapshot()
	if snap == nil {
		s.notReady(w)
		return
	}
	respondWithJSON(w, http.StatusOK, snap.Facets)
}

func (s *Server) Markers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	out, err := s.render(selectionFromQuery(r.URL.Query()))
	if err != nil {
		s.notReady(w)
		return
	}
	if out.layer == nil {
		respondWithError(w, http.StatusInternalServerError, MapErrorMessage)
		return
	}
	data, err := out.layer.GeoJSON()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode markers")
		respondWithError(w, http.StatusInternalServerError, "Failed to encode markers")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

func (s *Server) TileErrors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var tileErr mapview.TileError
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&tileErr); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tile error report")
		return
	}
	if tileErr.URL == "" && tileErr.Coords == "" {
		respondWithError(w, http.StatusBadRequest, "Tile error report needs a url or coords")
		return
	}
	s.reporter.TileError(&tileErr)
	w.WriteHeader(http.StatusNoContent)
}

type mapData struct {
	TileURL     string          `json:"tileUrl"`
	Attribution string          `json:"attribution"`
	MaxZoom     int             `json:"maxZoom"`
	Center      [2]float64      `json:"center"`
	Zoom        int             `json:"zoom"`
	Markers     json.RawMessage `json:"markers"`
}

type pageData struct {
	State      string
	Categories []string
	States     []string
	Selection  filter.Selection
	All        string
	Map        *mapData
	MapError   string
	Cards      template.HTML
	ListError  string
	NoResults  bool
}

func (s *Server) mapData(layer *mapview.Layer) (*mapData, error) {
	markers, err := layer.GeoJSON()
	if err != nil {
		return nil, err
	}
	settings := layer.Settings()
	center, zoom := layer.View()
	return &mapData{
		TileURL:     settings.TileURL,
		Attribution: settings.Attribution,
		MaxZoom:     settings.MaxZoom,
		Center:      [2]float64{center.Lat, center.Lon},
		Zoom:        zoom,
		Markers:     markers,
	}, nil
}

// Index renders the full page. The focus query parameter selects a card the
// same way clicking it does.
func (s *Server) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sel := selectionFromQuery(r.URL.Query())
	data := pageData{
		State:     s.controller.State().String(),
		Selection: sel,
		All:       filter.All,
	}

	var layer *mapview.Layer
	switch s.controller.State() {
	case page.Ready:
		out, err := s.render(sel)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to render page")
			http.Error(w, "Failed to render page", http.StatusInternalServerError)
			return
		}
		if focus := r.URL.Query().Get("focus"); focus != "" {
			if id, err := strconv.ParseInt(focus, 10, 64); err == nil {
				out.session.SelectCard(id)
			}
		}

		f := out.session.Facets()
		data.Categories, data.States = f.Categories, f.States
		data.NoResults = out.list.NoResults()

		var cards bytes.Buffer
		if err := out.list.Render(&cards); err != nil {
			s.log.Error().Err(err).Msg("Failed to render cards")
			http.Error(w, "Failed to render page", http.StatusInternalServerError)
			return
		}
		data.Cards = template.HTML(cards.String())
		layer = out.layer
	case page.LoadFailed:
		data.ListError = page.LoadErrorMessage
		layer, _ = s.newMap()
	default:
		layer, _ = s.newMap()
	}

	if layer == nil {
		data.MapError = MapErrorMessage
	} else {
		md, err := s.mapData(layer)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to encode markers")
			data.MapError = MapErrorMessage
		} else {
			data.Map = md
		}
	}

	var body bytes.Buffer
	if err := pageTmpl.Execute(&body, data); err != nil {
		s.log.Error().Err(err).Msg("Failed to execute page template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body.Bytes())
}
