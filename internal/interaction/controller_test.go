package interaction

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/stationindex"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

type recordingRenderer struct {
	events  []string
	focused []FocusRequest
	closed  []*DetailView
	open    int
	maxOpen int
}

func (r *recordingRenderer) Focus(req FocusRequest) {
	r.events = append(r.events, "focus")
	r.focused = append(r.focused, req)
	r.open++
	if r.open > r.maxOpen {
		r.maxOpen = r.open
	}
}

func (r *recordingRenderer) CloseDetail(view *DetailView) {
	r.events = append(r.events, "close")
	r.closed = append(r.closed, view)
	r.open--
}

func ptr(s string) *string { return &s }

func testIndex() *stationindex.Index {
	return stationindex.New([]models.Station{
		{ID: 1, Name: "Retiro", Line: models.LineC, Coordinates: orb.Point{-58.3747, -34.5911}, Connections: []models.Line{models.LineE}},
		{ID: 2, Name: "General San Martín", Line: models.LineC, Coordinates: orb.Point{-58.3781, -34.5955}},
		{ID: 3, Name: "Lavalle", Line: models.LineC, Coordinates: orb.Point{-58.3782, -34.6020}, Address: ptr("Av. Diagonal Norte y Lavalle")},
		{ID: 4, Name: "Constitución", Line: models.LineC, Coordinates: orb.Point{-58.3813, -34.6276}, Info: ptr("Cabecera de línea")},
		{ID: 5, Name: "Catedral", Line: models.LineD, Coordinates: orb.Point{-58.3738, -34.6075}},
	})
}

func newTestController(r Renderer) *Controller {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return NewController(testIndex(), r, WithClock(func() time.Time { return fixed }))
}

func mustStation(t *testing.T, id int) models.Station {
	t.Helper()
	s, ok := testIndex().Station(id)
	if !ok {
		t.Fatalf("station %d missing from test index", id)
	}
	return s
}

func TestSelectBuildsDetailView(t *testing.T) {
	r := &recordingRenderer{}
	c := newTestController(r)

	view, err := c.Select(mustStation(t, 2))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	if view.Name != "General San Martín" || view.Line != models.LineC {
		t.Errorf("view = %s/%s", view.Name, view.Line)
	}
	if view.LineColor != models.GetLineColor(models.LineC) {
		t.Errorf("LineColor = %s", view.LineColor)
	}
	if view.Previous == nil || view.Previous.ID != 1 {
		t.Errorf("Previous = %+v, want id 1", view.Previous)
	}
	if view.Next == nil || view.Next.ID != 3 {
		t.Errorf("Next = %+v, want id 3", view.Next)
	}
	if view.Previous.DistanceMeters <= 0 {
		t.Errorf("Previous.DistanceMeters = %f, want > 0", view.Previous.DistanceMeters)
	}
	if !view.OpenedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("OpenedAt = %v", view.OpenedAt)
	}
	if c.Current() != view {
		t.Error("Current() does not return the opened view")
	}

	if len(r.focused) != 1 {
		t.Fatalf("focus requests = %d, want 1", len(r.focused))
	}
	req := r.focused[0]
	if req.Center != (orb.Point{-58.3781, -34.5955}) {
		t.Errorf("focus center = %v", req.Center)
	}
	if req.Zoom != DefaultFocusZoom {
		t.Errorf("focus zoom = %v, want %v", req.Zoom, float64(DefaultFocusZoom))
	}
	if req.Detail != view {
		t.Error("focus request does not carry the detail view")
	}
}

func TestDetailViewHTML(t *testing.T) {
	c := newTestController(&recordingRenderer{})

	first, err := c.Select(mustStation(t, 1))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !strings.Contains(first.HTML, "<strong>Estación:</strong> Retiro") {
		t.Errorf("HTML missing station title: %s", first.HTML)
	}
	if !strings.Contains(first.HTML, `data-action="previous" disabled`) {
		t.Errorf("previous control should be disabled at the line start: %s", first.HTML)
	}
	if strings.Contains(first.HTML, `data-action="next" disabled`) {
		t.Errorf("next control should be enabled: %s", first.HTML)
	}
	if len(first.Connections) != 1 || first.Connections[0].Line != models.LineE {
		t.Errorf("Connections = %+v", first.Connections)
	}

	last, err := c.Select(mustStation(t, 4))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !strings.Contains(last.HTML, `data-action="next" disabled`) {
		t.Errorf("next control should be disabled at the line end: %s", last.HTML)
	}
	if !strings.Contains(last.HTML, "Cabecera de línea") {
		t.Errorf("HTML missing info: %s", last.HTML)
	}

	address, err := c.Select(mustStation(t, 3))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !strings.Contains(address.HTML, "Av. Diagonal Norte y Lavalle") {
		t.Errorf("HTML missing address: %s", address.HTML)
	}
}

func TestDetailViewEscapesNames(t *testing.T) {
	idx := stationindex.New([]models.Station{
		{ID: 1, Name: "<script>x</script>", Line: models.LineH},
	})
	c := NewController(idx, &recordingRenderer{})

	view, err := c.Select(models.Station{ID: 1, Name: "<script>x</script>", Line: models.LineH})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if strings.Contains(view.HTML, "<script>") {
		t.Errorf("HTML not escaped: %s", view.HTML)
	}
}

func TestAtMostOneDetailViewOpen(t *testing.T) {
	r := &recordingRenderer{}
	c := newTestController(r)

	first, _ := c.Select(mustStation(t, 1))
	second, _ := c.Select(mustStation(t, 5))
	if _, err := c.Next(); !errors.Is(err, ErrNoNeighbor) {
		t.Fatalf("Next on single-station line: err = %v, want ErrNoNeighbor", err)
	}
	third, _ := c.Select(mustStation(t, 3))

	if r.maxOpen != 1 {
		t.Errorf("max open detail views = %d, want 1", r.maxOpen)
	}
	want := []string{"focus", "close", "focus", "close", "focus"}
	if strings.Join(r.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", r.events, want)
	}
	if len(r.closed) != 2 || r.closed[0] != first || r.closed[1] != second {
		t.Errorf("closed views = %v, want the first two selections", r.closed)
	}
	if c.Current() != third {
		t.Error("Current() should be the last selection")
	}
}

func TestSelectNextPreviousRoundTrip(t *testing.T) {
	c := newTestController(&recordingRenderer{})

	if _, err := c.Select(mustStation(t, 2)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	next, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next.StationID != 3 {
		t.Errorf("Next() station = %d, want 3", next.StationID)
	}
	back, err := c.Previous()
	if err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if back.StationID != 2 {
		t.Errorf("Previous() station = %d, want 2", back.StationID)
	}

	selected, ok := c.Selected()
	if !ok || selected.ID != 2 {
		t.Errorf("Selected() = %d, %v", selected.ID, ok)
	}
}

func TestNavigationWithoutSelection(t *testing.T) {
	r := &recordingRenderer{}
	c := newTestController(r)

	if _, err := c.Next(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Next: err = %v, want ErrNoSelection", err)
	}
	if _, err := c.Previous(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Previous: err = %v, want ErrNoSelection", err)
	}
	if len(r.events) != 0 {
		t.Errorf("renderer received events: %v", r.events)
	}
}

func TestNavigationAtLineEndsKeepsState(t *testing.T) {
	r := &recordingRenderer{}
	c := newTestController(r)

	first, _ := c.Select(mustStation(t, 1))
	if _, err := c.Previous(); !errors.Is(err, ErrNoNeighbor) {
		t.Errorf("Previous at line start: err = %v, want ErrNoNeighbor", err)
	}
	if c.Current() != first {
		t.Error("failed navigation changed the current view")
	}

	last, _ := c.Select(mustStation(t, 4))
	if _, err := c.Next(); !errors.Is(err, ErrNoNeighbor) {
		t.Errorf("Next at line end: err = %v, want ErrNoNeighbor", err)
	}
	if c.Current() != last {
		t.Error("failed navigation changed the current view")
	}
	if len(r.focused) != 2 {
		t.Errorf("focus requests = %d, want 2", len(r.focused))
	}
}

func TestClose(t *testing.T) {
	r := &recordingRenderer{}
	c := newTestController(r)

	c.Close()
	if len(r.closed) != 0 {
		t.Fatal("Close without a view should not reach the renderer")
	}

	view, _ := c.Select(mustStation(t, 3))
	c.Close()
	if c.Current() != nil {
		t.Error("Current() should be nil after Close")
	}
	if len(r.closed) != 1 || r.closed[0] != view {
		t.Errorf("closed = %v", r.closed)
	}
	if _, err := c.Next(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Next after Close: err = %v, want ErrNoSelection", err)
	}
}

func TestStationNotInIndexHasNoNeighbors(t *testing.T) {
	c := newTestController(&recordingRenderer{})

	view, err := c.Select(models.Station{ID: 99, Name: "Fantasma", Line: models.LineC})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if view.Previous != nil || view.Next != nil {
		t.Errorf("neighbors = %+v / %+v, want none", view.Previous, view.Next)
	}
}

func TestWithFocusZoom(t *testing.T) {
	r := &recordingRenderer{}
	c := NewController(testIndex(), r, WithFocusZoom(17), WithFocusZoom(0))

	if _, err := c.Select(mustStation(t, 1)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if r.focused[0].Zoom != 17 {
		t.Errorf("zoom = %v, want 17", r.focused[0].Zoom)
	}
}
