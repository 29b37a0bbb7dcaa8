// Package interaction implements the station selection flow: selecting a
// station closes the open detail view, focuses the renderer on the new
// station and enables the previous/next controls from the station index.
package interaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

var (
	// ErrNoSelection is returned by Next and Previous before any selection
	ErrNoSelection = errors.New("no station selected")
	// ErrNoNeighbor is returned when the selected station is at the end of its line
	ErrNoNeighbor = errors.New("no neighbor station in that direction")
)

// DefaultFocusZoom is the camera zoom used when focusing a station
const DefaultFocusZoom = 15

// NeighborFinder resolves the stations adjacent to a station on its line
type NeighborFinder interface {
	NeighborsOf(s models.Station) (previous, next *models.Station)
}

// Renderer is the map side of the flow. It draws what the controller asks for.
type Renderer interface {
	Focus(req FocusRequest)
	CloseDetail(view *DetailView)
}

// Controller owns the currently displayed detail view. It is not safe for
// concurrent use; callers serialize events the way a UI event loop would.
type Controller struct {
	neighbors NeighborFinder
	renderer  Renderer
	zoom      float64
	now       func() time.Time

	current  *DetailView
	station  models.Station
	previous *models.Station
	next     *models.Station
}

// Option configures a Controller
type Option func(*Controller)

// WithFocusZoom sets the camera zoom for focus requests
func WithFocusZoom(zoom float64) Option {
	return func(c *Controller) {
		if zoom > 0 {
			c.zoom = zoom
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController creates a controller with no selection
func NewController(neighbors NeighborFinder, renderer Renderer, opts ...Option) *Controller {
	c := &Controller{
		neighbors: neighbors,
		renderer:  renderer,
		zoom:      DefaultFocusZoom,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Select runs the selection flow for s and returns the new detail view
func (c *Controller) Select(s models.Station) (*DetailView, error) {
	previous, next := c.neighbors.NeighborsOf(s)

	view, err := newDetailView(s, previous, next, c.now())
	if err != nil {
		return nil, fmt.Errorf("failed to build detail view for station %d: %w", s.ID, err)
	}

	c.Close()

	c.current = view
	c.station = s
	c.previous = previous
	c.next = next

	c.renderer.Focus(FocusRequest{
		Center: s.Coordinates,
		Zoom:   c.zoom,
		Detail: view,
	})

	return view, nil
}

// Next selects the station after the current one
func (c *Controller) Next() (*DetailView, error) {
	if c.current == nil {
		return nil, ErrNoSelection
	}
	if c.next == nil {
		return nil, ErrNoNeighbor
	}
	return c.Select(*c.next)
}

// Previous selects the station before the current one
func (c *Controller) Previous() (*DetailView, error) {
	if c.current == nil {
		return nil, ErrNoSelection
	}
	if c.previous == nil {
		return nil, ErrNoNeighbor
	}
	return c.Select(*c.previous)
}

// Close closes the current detail view, if any
func (c *Controller) Close() {
	if c.current == nil {
		return
	}
	c.renderer.CloseDetail(c.current)
	c.current = nil
	c.previous = nil
	c.next = nil
}

// Current returns the open detail view, or nil
func (c *Controller) Current() *DetailView {
	return c.current
}

// Selected returns the station of the open detail view
func (c *Controller) Selected() (models.Station, bool) {
	if c.current == nil {
		return models.Station{}, false
	}
	return c.station, true
}
