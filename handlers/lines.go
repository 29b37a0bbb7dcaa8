package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// LineIndex defines the per-line lookups used by LineHandler
type LineIndex interface {
	Line(line models.Line) []models.Station
}

// LineHandler handles HTTP requests for line data
type LineHandler struct {
	index    LineIndex
	geometry []models.LineGeometry
}

// NewLineHandler creates a handler over the index and the loaded line geometries
func NewLineHandler(index LineIndex, geometry []models.LineGeometry) *LineHandler {
	return &LineHandler{index: index, geometry: geometry}
}

// GetLinesResponse is the JSON response for GET /api/lines
type GetLinesResponse struct {
	Lines []models.LineSummary `json:"lines"`
	Count int                  `json:"count"`
}

// LineStationsResponse is the JSON response for GET /api/lines/{line}/stations
type LineStationsResponse struct {
	Line     models.Line      `json:"line"`
	Color    string           `json:"color"`
	Stations []models.Station `json:"stations"`
	Count    int              `json:"count"`
}

// GetLines handles GET /api/lines
// Returns every Subte line with its color, terminals and length
func (h *LineHandler) GetLines(w http.ResponseWriter, r *http.Request) {
	lengths := make(map[models.Line]float64, len(h.geometry))
	for _, g := range h.geometry {
		lengths[g.Line] = g.LengthMeters
	}

	summaries := make([]models.LineSummary, 0, len(models.AllLines()))
	for _, line := range models.AllLines() {
		stations := h.index.Line(line)
		summary := models.LineSummary{
			Line:         line,
			Color:        models.GetLineColor(line),
			StationCount: len(stations),
			LengthMeters: lengths[line],
		}
		if len(stations) > 0 {
			summary.FirstStation = stations[0].Name
			summary.LastStation = stations[len(stations)-1].Name
		}
		summaries = append(summaries, summary)
	}

	writeJSON(w, http.StatusOK, "public, max-age=3600", GetLinesResponse{
		Lines: summaries,
		Count: len(summaries),
	})
}

// GetLineGeometry handles GET /api/lines/geometry
// Returns the line dataset as a GeoJSON FeatureCollection
func (h *LineHandler) GetLineGeometry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	writeJSON(w, http.StatusOK, "public, max-age=3600", models.LinesFeatureCollection(h.geometry))
}

// GetLineStations handles GET /api/lines/{line}/stations
// Returns the stations of a line ordered by id
func (h *LineHandler) GetLineStations(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "line")
	line, ok := models.ParseLine(raw)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown line", map[string]interface{}{
			"line": raw,
		})
		return
	}

	stations := h.index.Line(line)
	if stations == nil {
		stations = []models.Station{}
	}

	writeJSON(w, http.StatusOK, "public, max-age=3600", LineStationsResponse{
		Line:     line,
		Color:    models.GetLineColor(line),
		Stations: stations,
		Count:    len(stations),
	})
}
