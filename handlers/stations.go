package handlers

import (
	"errors"
	"iter"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/go-chi/chi/v5"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// ErrStationNotFound is returned when a station id is not in the index
var ErrStationNotFound = errors.New("station not found")

// StationIndex defines the station lookups served over HTTP
type StationIndex interface {
	All() []models.Station
	Station(id int) (models.Station, bool)
	NeighborsOf(s models.Station) (previous, next *models.Station)
	Search(query string) iter.Seq[models.Station]
}

// StationHandler handles HTTP requests for station data
type StationHandler struct {
	index       StationIndex
	searchCache gcache.Cache
}

// NewStationHandler creates a handler over the index. Search results are
// kept in an LRU of cacheSize entries.
func NewStationHandler(index StationIndex, cacheSize int) *StationHandler {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	return &StationHandler{
		index: index,
		searchCache: gcache.New(cacheSize).
			LRU().
			Expiration(time.Hour).
			Build(),
	}
}

// SearchResponse is the JSON response for GET /api/stations/search
type SearchResponse struct {
	Query   string           `json:"query"`
	Results []models.Station `json:"results"`
	Count   int              `json:"count"`
}

// NeighborsResponse is the JSON response for GET /api/stations/{id}/neighbors
type NeighborsResponse struct {
	Station  models.Station  `json:"station"`
	Previous *models.Station `json:"previous"`
	Next     *models.Station `json:"next"`
}

// GetStations handles GET /api/stations
// Returns the station dataset as a GeoJSON FeatureCollection in dataset order
func (h *StationHandler) GetStations(w http.ResponseWriter, r *http.Request) {
	fc := models.StationsFeatureCollection(h.index.All())

	w.Header().Set("Content-Type", "application/geo+json")
	writeJSON(w, http.StatusOK, "public, max-age=3600", fc)
}

// SearchStations handles GET /api/stations/search?q=
func (h *StationHandler) SearchStations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	key := strings.ToLower(strings.TrimSpace(query))

	var results []models.Station
	if cached, err := h.searchCache.Get(key); err == nil {
		results = cached.([]models.Station)
	} else {
		results = slices.Collect(h.index.Search(query))
		if results == nil {
			results = []models.Station{}
		}
		_ = h.searchCache.Set(key, results)
	}

	writeJSON(w, http.StatusOK, "public, max-age=300", SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
	})
}

// GetStation handles GET /api/stations/{id}
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	station, ok := h.stationFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, "public, max-age=3600", station)
}

// GetNeighbors handles GET /api/stations/{id}/neighbors
// Returns the stations before and after the station on its line
func (h *StationHandler) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	station, ok := h.stationFromPath(w, r)
	if !ok {
		return
	}

	previous, next := h.index.NeighborsOf(station)
	writeJSON(w, http.StatusOK, "public, max-age=3600", NeighborsResponse{
		Station:  station,
		Previous: previous,
		Next:     next,
	})
}

// stationFromPath resolves the {id} URL parameter, writing the error
// response when it cannot
func (h *StationHandler) stationFromPath(w http.ResponseWriter, r *http.Request) (models.Station, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "station id must be an integer", map[string]interface{}{
			"id": raw,
		})
		return models.Station{}, false
	}

	station, ok := h.index.Station(id)
	if !ok {
		writeError(w, http.StatusNotFound, ErrStationNotFound.Error(), map[string]interface{}{
			"id": id,
		})
		return models.Station{}, false
	}
	return station, true
}
