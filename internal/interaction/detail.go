package interaction

import (
	"bytes"
	"html/template"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// Connection is a transfer badge shown in the detail view
type Connection struct {
	Line  models.Line `json:"line"`
	Color string      `json:"color"`
}

// NeighborRef is the target of an enabled previous/next control
type NeighborRef struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// DetailView is the popup shown for the selected station
type DetailView struct {
	StationID   int          `json:"stationId"`
	Name        string       `json:"name"`
	Line        models.Line  `json:"line"`
	LineColor   string       `json:"lineColor"`
	Coordinates orb.Point    `json:"coordinates"`
	Address     *string      `json:"address,omitempty"`
	Info        *string      `json:"info,omitempty"`
	Connections []Connection `json:"connections"`
	Previous    *NeighborRef `json:"previous"` // nil disables the control
	Next        *NeighborRef `json:"next"`
	HTML        string       `json:"html"`
	OpenedAt    time.Time    `json:"openedAt"`
}

// FocusRequest asks the renderer to move the camera and show a detail view
type FocusRequest struct {
	Center orb.Point   `json:"center"`
	Zoom   float64     `json:"zoom"`
	Detail *DetailView `json:"detail"`
}

var popupTemplate = template.Must(template.New("popup").Parse(
	`<div class="station-popup" data-station-id="{{.StationID}}">` +
		`<span class="line-badge line-{{.Line}}" data-color="{{.LineColor}}">{{.Line}}</span> ` +
		`<strong>Estación:</strong> {{.Name}}` +
		`{{with .Address}}<p class="address">{{.}}</p>{{end}}` +
		`{{with .Info}}<p class="info">{{.}}</p>{{end}}` +
		`{{if .Connections}}<p class="connections">Combinación con:` +
		`{{range .Connections}} <span class="line-badge line-{{.Line}}" data-color="{{.Color}}">{{.Line}}</span>{{end}}</p>{{end}}` +
		`<div class="nav">` +
		`<button type="button" data-action="previous"{{if not .Previous}} disabled{{end}}>` +
		`{{with .Previous}}&larr; {{.Name}}{{else}}&larr;{{end}}</button>` +
		`<button type="button" data-action="next"{{if not .Next}} disabled{{end}}>` +
		`{{with .Next}}{{.Name}} &rarr;{{else}}&rarr;{{end}}</button>` +
		`</div></div>`,
))

// newDetailView builds the popup for s with its neighbors
func newDetailView(s models.Station, previous, next *models.Station, now time.Time) (*DetailView, error) {
	view := &DetailView{
		StationID:   s.ID,
		Name:        s.Name,
		Line:        s.Line,
		LineColor:   s.Color(),
		Coordinates: s.Coordinates,
		Address:     s.Address,
		Info:        s.Info,
		Connections: make([]Connection, 0, len(s.Connections)),
		Previous:    neighborRef(s, previous),
		Next:        neighborRef(s, next),
		OpenedAt:    now,
	}

	for _, c := range s.Connections {
		view.Connections = append(view.Connections, Connection{Line: c, Color: models.GetLineColor(c)})
	}

	var buf bytes.Buffer
	if err := popupTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	view.HTML = buf.String()

	return view, nil
}

func neighborRef(from models.Station, to *models.Station) *NeighborRef {
	if to == nil {
		return nil
	}
	return &NeighborRef{
		ID:             to.ID,
		Name:           to.Name,
		DistanceMeters: geo.DistanceHaversine(from.Coordinates, to.Coordinates),
	}
}
