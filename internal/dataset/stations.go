// Package dataset parses the station and line GeoJSON datasets into models.
//
// Two station schemas are accepted: the canonical one (id, name, line,
// address, info, connections) and the legacy export (ID, ESTACION, LINEA).
// Records that cannot be ordered or placed on a line are skipped and
// reported instead of failing the whole load.
package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/logger"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// Skip describes a record that was left out of the dataset
type Skip struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Report summarizes a dataset load
type Report struct {
	Loaded  int    `json:"loaded"`
	Skipped []Skip `json:"skipped,omitempty"`
}

func (r *Report) skip(index int, reason string) {
	r.Skipped = append(r.Skipped, Skip{Index: index, Reason: reason})
	logger.Warn("Dataset: skipping station record", "index", index, "reason", reason)
}

// LoadStationsFile reads and parses a station GeoJSON file
func LoadStationsFile(path string) ([]models.Station, Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to read stations: %w", err)
	}
	return ParseStations(data)
}

// ParseStations parses a station FeatureCollection. Stations keep the order
// in which they appear in the dataset.
func ParseStations(data []byte) ([]models.Station, Report, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to parse station GeoJSON: %w", err)
	}

	var report Report
	stations := make([]models.Station, 0, len(fc.Features))
	seen := make(map[int]bool, len(fc.Features))

	for i, f := range fc.Features {
		station, reason := stationFromFeature(f)
		if reason != "" {
			report.skip(i, reason)
			continue
		}
		if seen[station.ID] {
			report.skip(i, fmt.Sprintf("duplicate id %d", station.ID))
			continue
		}
		if err := station.Validate(); err != nil {
			report.skip(i, err.Error())
			continue
		}

		seen[station.ID] = true
		stations = append(stations, station)
	}

	report.Loaded = len(stations)
	return stations, report, nil
}

func stationFromFeature(f *geojson.Feature) (models.Station, string) {
	point, ok := f.Geometry.(orb.Point)
	if !ok {
		if f.Geometry == nil {
			return models.Station{}, "missing geometry"
		}
		return models.Station{}, "geometry is not a Point: " + f.Geometry.GeoJSONType()
	}

	props := f.Properties

	rawID := firstProperty(props, "id", "ID")
	if rawID == nil {
		rawID = f.ID
	}
	id, ok := parseID(rawID)
	if !ok {
		return models.Station{}, fmt.Sprintf("non-numeric id %v", rawID)
	}

	name := strings.TrimSpace(stringProperty(props, "name", "ESTACION", "estacion"))
	if name == "" {
		return models.Station{}, fmt.Sprintf("station %d has no name", id)
	}

	rawLine := stringProperty(props, "line", "LINEA", "linea")
	line, ok := models.ParseLine(rawLine)
	if !ok {
		return models.Station{}, fmt.Sprintf("station %d has unknown line %q", id, rawLine)
	}

	return models.Station{
		ID:          id,
		Name:        name,
		Line:        line,
		Coordinates: point,
		Address:     optionalString(props, "address", "DIRECCION"),
		Info:        optionalString(props, "info", "INFO"),
		Connections: ParseConnections(firstProperty(props, "connections", "COMBINACION"), line),
	}, ""
}

// parseID accepts integral JSON numbers and numeric strings ("10", " 7 ")
func parseID(v interface{}) (int, bool) {
	switch id := v.(type) {
	case float64:
		if id != math.Trunc(id) || id < 0 || id > math.MaxInt32 {
			return 0, false
		}
		return int(id), true
	case int:
		return id, id >= 0
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	case json.Number:
		n, err := strconv.Atoi(id.String())
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// ParseConnections reads the connection field leniently: a JSON list, a
// JSON-encoded list inside a string, or a separated string ("C, D").
// Anything unparseable yields no connections. Unknown lines and the
// station's own line are dropped.
func ParseConnections(v interface{}, own models.Line) []models.Line {
	var raw []string

	switch c := v.(type) {
	case []interface{}:
		for _, item := range c {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = c
	case string:
		c = strings.TrimSpace(c)
		if strings.HasPrefix(c, "[") {
			if err := json.Unmarshal([]byte(c), &raw); err != nil {
				return []models.Line{}
			}
		} else {
			raw = strings.FieldsFunc(c, func(r rune) bool {
				return r == ',' || r == ';' || r == '/' || r == '|'
			})
		}
	default:
		return []models.Line{}
	}

	lines := make([]models.Line, 0, len(raw))
	for _, s := range raw {
		line, ok := models.ParseLine(s)
		if !ok || line == own || slices.Contains(lines, line) {
			continue
		}
		lines = append(lines, line)
	}
	slices.Sort(lines)
	return lines
}

func firstProperty(props geojson.Properties, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := props[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringProperty(props geojson.Properties, keys ...string) string {
	switch v := firstProperty(props, keys...).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func optionalString(props geojson.Properties, keys ...string) *string {
	s := strings.TrimSpace(stringProperty(props, keys...))
	if s == "" {
		return nil
	}
	return &s
}
