// Package listview renders the attraction cards shown beside the map.
package listview

import (
	"html/template"
	"io"
	"strings"

	"attractions/internal/keys"
	"attractions/internal/models"
	"attractions/internal/view"
)

// NoCategories is shown in place of an empty category list.
const NoCategories = "N/A"

// Card is one rendered attraction.
type Card struct {
	ID          int64
	Name        string
	Location    string
	Description string
	Categories  []string
	Class       string
	Lat         float64
	Lon         float64
	Href        string
}

// CategoriesText joins the categories for plain-text output.
func (c Card) CategoriesText() string {
	if len(c.Categories) == 0 {
		return NoCategories
	}
	return strings.Join(c.Categories, ", ")
}

// List holds the cards of one rendered page.
type List struct {
	cards     []Card
	noResults bool
	link      func(id int64) string
}

var _ view.List = (*List)(nil)

// New returns an empty list. link, when non-nil, builds the href a card
// uses to select itself.
func New(link func(id int64) string) *List {
	return &List{link: link}
}

func (l *List) Clear() {
	l.cards = nil
}

func (l *List) RenderCard(a models.Attraction) error {
	pos, ok := a.Position()
	if !ok {
		return view.ErrInvalidCoordinates
	}

	card := Card{
		ID:          a.ID,
		Name:        a.Name,
		Location:    a.Location,
		Description: a.Description,
		Categories:  a.Categories,
		Class:       keys.CategoryClass(a.Categories),
		Lat:         pos.Lat,
		Lon:         pos.Lon,
	}
	if l.link != nil {
		card.Href = l.link(a.ID)
	}
	l.cards = append(l.cards, card)
	return nil
}

func (l *List) SetNoResults(empty bool) {
	l.noResults = empty
}

func (l *List) Card(id int64) (view.CardRef, bool) {
	for _, c := range l.cards {
		if c.ID == id {
			return view.CardRef{ID: c.ID, Lat: c.Lat, Lon: c.Lon}, true
		}
	}
	return view.CardRef{}, false
}

func (l *List) Cards() []Card { return l.cards }

func (l *List) NoResults() bool { return l.noResults }

var cardsTmpl = template.Must(template.New("cards").Parse(`{{range .}}<div class="attraction-card {{.Class}}" data-id="{{.ID}}" data-lat="{{.Lat}}" data-lon="{{.Lon}}">
  <h3>{{if .Href}}<a href="{{.Href}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}</h3>
  <p class="location">{{.Location}}</p>
  <p class="description">{{.Description}}</p>
  <div class="categories">Categories: {{range .Categories}}<span>{{.}}</span>{{else}}` + NoCategories + `{{end}}</div>
</div>
{{end}}`))

// Render writes the cards as HTML. Text fields are escaped.
func (l *List) Render(w io.Writer) error {
	return cardsTmpl.Execute(w, l.cards)
}
