package handlers

import (
	"net/http"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/config"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// Layer and source ids used by the frontend for click and hover handlers
const (
	BasemapSourceID   = "osm"
	LinesSourceID     = "lineas"
	StationsSourceID  = "estaciones"
	BasemapLayerID    = "osm-layer"
	LinesLayerID      = "lineas-layer"
	StationsLayerID   = "estaciones-layer"
	mapLibreVersion   = 8
	stationsDataPath  = "/api/stations"
	lineGeometryPath  = "/api/lines/geometry"
	defaultStyleTitle = "Subte de Buenos Aires"
)

// MapStyleHandler serves the MapLibre style document for the map
type MapStyleHandler struct {
	style config.MapStyle
}

// NewMapStyleHandler creates a handler for the given style settings
func NewMapStyleHandler(style config.MapStyle) *MapStyleHandler {
	return &MapStyleHandler{style: style}
}

// StyleDocument is a MapLibre style specification document
type StyleDocument struct {
	Version  int                    `json:"version"`
	Name     string                 `json:"name"`
	Center   [2]float64             `json:"center"`
	Zoom     float64                `json:"zoom"`
	Sources  map[string]interface{} `json:"sources"`
	Layers   []StyleLayer           `json:"layers"`
	Metadata map[string]interface{} `json:"metadata"`
}

// StyleLayer is a single layer of a style document
type StyleLayer struct {
	ID     string                 `json:"id"`
	Type   string                 `json:"type"`
	Source string                 `json:"source"`
	Paint  map[string]interface{} `json:"paint,omitempty"`
}

// GetMapStyle handles GET /api/map/style
// GeoJSON sources point back at this server so the style works behind proxies
func (h *MapStyleHandler) GetMapStyle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "public, max-age=600", h.Document(baseURL(r)))
}

// Document builds the style with GeoJSON sources served from base
func (h *MapStyleHandler) Document(base string) StyleDocument {
	s := h.style

	lineColors := make(map[string]string, len(models.LineColors))
	for line, color := range models.LineColors {
		lineColors[string(line)] = color
	}

	return StyleDocument{
		Version: mapLibreVersion,
		Name:    defaultStyleTitle,
		Center:  s.Camera.Center,
		Zoom:    s.Camera.Zoom,
		Sources: map[string]interface{}{
			BasemapSourceID: map[string]interface{}{
				"type":        "raster",
				"tiles":       s.Basemap.Tiles,
				"tileSize":    s.Basemap.TileSize,
				"attribution": s.Basemap.Attribution,
			},
			LinesSourceID: map[string]interface{}{
				"type": "geojson",
				"data": base + lineGeometryPath,
			},
			StationsSourceID: map[string]interface{}{
				"type": "geojson",
				"data": base + stationsDataPath,
			},
		},
		Layers: []StyleLayer{
			{
				ID:     BasemapLayerID,
				Type:   "raster",
				Source: BasemapSourceID,
			},
			{
				ID:     LinesLayerID,
				Type:   "line",
				Source: LinesSourceID,
				Paint: map[string]interface{}{
					"line-color": []interface{}{"coalesce", []interface{}{"get", "color"}, s.Lines.FallbackColor},
					"line-width": s.Lines.Width,
				},
			},
			{
				ID:     StationsLayerID,
				Type:   "circle",
				Source: StationsSourceID,
				Paint: map[string]interface{}{
					"circle-radius":       s.Stations.Radius,
					"circle-color":        s.Stations.Color,
					"circle-stroke-width": s.Stations.StrokeWidth,
					"circle-stroke-color": s.Stations.StrokeColor,
				},
			},
		},
		Metadata: map[string]interface{}{
			"subte:focusZoom":      s.Focus.Zoom,
			"subte:lineColors":     lineColors,
			"subte:clickableLayer": StationsLayerID,
		},
	}
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
