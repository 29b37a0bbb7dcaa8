// Package subte generates the canonical Subte station and line GeoJSON
// datasets from a static GTFS feed.
package subte

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/logger"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/static/gtfs"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// GeneratorVersion is written to the manifest. Bump it whenever the output
// format or id assignment changes so existing datasets get regenerated.
const GeneratorVersion = "1"

// Output file names inside the output directory
const (
	StationsFile = "estaciones.geojson"
	LinesFile    = "lineas.geojson"
	ManifestFile = "manifest.json"
)

var validate = validator.New()

// Manifest describes a generated dataset
type Manifest struct {
	GeneratedAt      string            `json:"generated_at"`
	UpdatedAt        string            `json:"updated_at"`
	GeneratorVersion string            `json:"generator_version"`
	StationCount     int               `json:"station_count"`
	LineCount        int               `json:"line_count"`
	Files            map[string]string `json:"files"` // name -> sha256
}

// Result is the dataset built from a feed
type Result struct {
	Stations []models.Station
	Lines    []models.LineGeometry
}

// Build derives the station and line datasets from GTFS data. Station ids
// are assigned line by line in display order, following the stop order of
// each line's longest trip, so ascending id order is travel order.
func Build(data *gtfs.Data) (Result, error) {
	routeToLine := buildRouteToLineMapping(data.Routes)
	if len(routeToLine) == 0 {
		return Result{}, fmt.Errorf("no subway routes found in feed")
	}

	stopsByID := make(map[string]gtfs.Stop, len(data.Stops))
	for _, s := range data.Stops {
		stopsByID[s.StopID] = s
	}

	stopTimesByTrip := make(map[string][]gtfs.StopTime)
	for _, st := range data.StopTimes {
		stopTimesByTrip[st.TripID] = append(stopTimesByTrip[st.TripID], st)
	}

	tripsByLine := make(map[models.Line][]gtfs.Trip)
	for _, trip := range data.Trips {
		if line, ok := routeToLine[trip.RouteID]; ok {
			tripsByLine[line] = append(tripsByLine[line], trip)
		}
	}

	lineColors := buildLineColors(data.Routes, routeToLine)

	var (
		result     Result
		nextID     = 1
		placesLine = make(map[string][]models.Line) // station key -> lines serving it
		stationKey = make(map[int]string)           // station id -> station key
	)

	for _, line := range models.AllLines() {
		trips := tripsByLine[line]
		if len(trips) == 0 {
			logger.Warn("Subte generator: line has no trips", "line", line)
			continue
		}

		trip := longestTrip(trips, stopTimesByTrip)
		stopTimes := slices.Clone(stopTimesByTrip[trip.TripID])
		slices.SortFunc(stopTimes, func(a, b gtfs.StopTime) int {
			return cmp.Compare(a.StopSequence, b.StopSequence)
		})

		var coords orb.LineString
		seen := make(map[string]bool)
		for _, st := range stopTimes {
			stop, ok := stopsByID[st.StopID]
			if !ok {
				logger.Warn("Subte generator: unknown stop in stop_times", "stop_id", st.StopID, "trip_id", trip.TripID)
				continue
			}
			key, place := stationPlace(stop, stopsByID)
			if seen[key] {
				continue
			}
			seen[key] = true

			station := models.Station{
				ID:          nextID,
				Name:        place.StopName,
				Line:        line,
				Coordinates: orb.Point{place.StopLon, place.StopLat},
			}
			if desc := strings.TrimSpace(place.StopDesc); desc != "" {
				station.Address = &desc
			}
			nextID++

			result.Stations = append(result.Stations, station)
			stationKey[station.ID] = key
			placesLine[key] = append(placesLine[key], line)
			coords = append(coords, station.Coordinates)
		}

		if shape := longestShape(trips, data.Shapes); len(shape) >= 2 {
			coords = shape
		}
		if len(coords) < 2 {
			logger.Warn("Subte generator: line has no drawable geometry", "line", line)
			continue
		}

		result.Lines = append(result.Lines, models.LineGeometry{
			Line:         line,
			Color:        lineColors[line],
			Coordinates:  orb.MultiLineString{coords},
			LengthMeters: geo.LengthHaversine(coords),
		})
	}

	// Transfers: stations sharing a parent station across lines
	for i := range result.Stations {
		s := &result.Stations[i]
		s.Connections = []models.Line{}
		for _, l := range placesLine[stationKey[s.ID]] {
			if l != s.Line && !slices.Contains(s.Connections, l) {
				s.Connections = append(s.Connections, l)
			}
		}
		slices.Sort(s.Connections)
	}

	markTermini(result.Stations)

	return result, nil
}

// Generate builds the datasets and writes them with a manifest into outputDir
func Generate(data *gtfs.Data, outputDir string) (*Manifest, error) {
	result, err := Build(data)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", outputDir, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	manifest := &Manifest{
		GeneratedAt:      now,
		UpdatedAt:        now,
		GeneratorVersion: GeneratorVersion,
		StationCount:     len(result.Stations),
		LineCount:        len(result.Lines),
		Files:            make(map[string]string),
	}

	outputs := []struct {
		name string
		v    interface{}
	}{
		{StationsFile, models.StationsFeatureCollection(result.Stations)},
		{LinesFile, models.LinesFeatureCollection(result.Lines)},
	}
	for _, out := range outputs {
		sum, err := writeJSON(filepath.Join(outputDir, out.name), out.v)
		if err != nil {
			return nil, err
		}
		manifest.Files[out.name] = sum
	}

	if _, err := writeJSON(filepath.Join(outputDir, ManifestFile), manifest); err != nil {
		return nil, err
	}

	logger.Info("Subte: generated static dataset",
		"stations", manifest.StationCount,
		"lines", manifest.LineCount,
		"dir", outputDir,
	)
	return manifest, nil
}

// buildRouteToLineMapping maps subway route ids to Subte lines. Routes
// whose names are not a Subte line (premetro, test routes) are left out.
func buildRouteToLineMapping(routes []gtfs.Route) map[string]models.Line {
	mapping := make(map[string]models.Line)
	for _, route := range routes {
		if route.RouteType != gtfs.RouteTypeSubway {
			continue
		}
		for _, name := range []string{route.RouteShortName, route.RouteLongName, route.RouteID} {
			if line, ok := models.ParseLine(name); ok {
				mapping[route.RouteID] = line
				break
			}
		}
	}
	return mapping
}

// buildLineColors prefers the feed's route_color and falls back to the
// official table
func buildLineColors(routes []gtfs.Route, routeToLine map[string]models.Line) map[models.Line]string {
	colors := make(map[models.Line]string)
	for _, line := range models.AllLines() {
		colors[line] = models.GetLineColor(line)
	}
	for _, route := range routes {
		line, ok := routeToLine[route.RouteID]
		if !ok || route.RouteColor == "" {
			continue
		}
		color := "#" + strings.ToUpper(strings.TrimPrefix(route.RouteColor, "#"))
		if validate.Var(color, "hexcolor") == nil {
			colors[line] = color
		}
	}
	return colors
}

// longestTrip picks the trip with the most stops. Ties go to direction 0,
// then to the smallest trip id, so output is stable across runs.
func longestTrip(trips []gtfs.Trip, stopTimesByTrip map[string][]gtfs.StopTime) gtfs.Trip {
	return slices.MaxFunc(trips, func(a, b gtfs.Trip) int {
		if c := cmp.Compare(len(stopTimesByTrip[a.TripID]), len(stopTimesByTrip[b.TripID])); c != 0 {
			return c
		}
		if c := cmp.Compare(b.DirectionID, a.DirectionID); c != 0 {
			return c
		}
		return cmp.Compare(b.TripID, a.TripID)
	})
}

// longestShape returns the shape with the most points used by any of trips
func longestShape(trips []gtfs.Trip, shapes map[string][]gtfs.ShapePoint) orb.LineString {
	var best []gtfs.ShapePoint
	var bestID string
	for _, trip := range trips {
		points := shapes[trip.ShapeID]
		if len(points) > len(best) || (len(points) == len(best) && len(points) > 0 && trip.ShapeID < bestID) {
			best = points
			bestID = trip.ShapeID
		}
	}

	ls := make(orb.LineString, 0, len(best))
	for _, p := range best {
		ls = append(ls, orb.Point{p.ShapePtLon, p.ShapePtLat})
	}
	return ls
}

// stationPlace resolves a stop to its parent station when the feed has one
func stationPlace(stop gtfs.Stop, stopsByID map[string]gtfs.Stop) (string, gtfs.Stop) {
	if stop.ParentStation != "" {
		if parent, ok := stopsByID[stop.ParentStation]; ok {
			return parent.StopID, parent
		}
	}
	return stop.StopID, stop
}

// markTermini sets the info text of the first and last station of each line
func markTermini(stations []models.Station) {
	first := make(map[models.Line]int)
	last := make(map[models.Line]int)
	for i, s := range stations {
		if _, ok := first[s.Line]; !ok {
			first[s.Line] = i
		}
		last[s.Line] = i
	}

	for _, idx := range []map[models.Line]int{first, last} {
		for _, i := range idx {
			info := "Cabecera de línea"
			stations[i].Info = &info
		}
	}
}

func writeJSON(path string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return sha256Sum(data), nil
}

func sha256Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
