// Package gtfs reads the static GTFS tables needed to build the Subte
// station and line datasets.
package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/logger"
)

// ErrMissingTable is returned when a required file is absent from the feed
var ErrMissingTable = errors.New("gtfs: required table missing")

// Parse reads a GTFS zip file. routes.txt, stops.txt, trips.txt and
// stop_times.txt are required, shapes.txt is optional.
func Parse(zipPath string) (*Data, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	files := make(map[string]*zip.File)
	for _, f := range r.File {
		// some feeds nest the tables in a folder
		name := f.Name
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		files[name] = f
	}

	data := &Data{Shapes: make(map[string][]ShapePoint)}

	tables := []struct {
		name     string
		required bool
		row      func(field func(string) string)
	}{
		{"routes.txt", true, func(field func(string) string) {
			data.Routes = append(data.Routes, Route{
				RouteID:        field("route_id"),
				RouteShortName: field("route_short_name"),
				RouteLongName:  field("route_long_name"),
				RouteType:      atoi(field("route_type")),
				RouteColor:     field("route_color"),
			})
		}},
		{"stops.txt", true, func(field func(string) string) {
			data.Stops = append(data.Stops, Stop{
				StopID:        field("stop_id"),
				StopName:      field("stop_name"),
				StopDesc:      field("stop_desc"),
				StopLat:       atof(field("stop_lat")),
				StopLon:       atof(field("stop_lon")),
				LocationType:  atoi(field("location_type")),
				ParentStation: field("parent_station"),
			})
		}},
		{"trips.txt", true, func(field func(string) string) {
			data.Trips = append(data.Trips, Trip{
				RouteID:     field("route_id"),
				TripID:      field("trip_id"),
				DirectionID: atoi(field("direction_id")),
				ShapeID:     field("shape_id"),
			})
		}},
		{"stop_times.txt", true, func(field func(string) string) {
			data.StopTimes = append(data.StopTimes, StopTime{
				TripID:       field("trip_id"),
				StopID:       field("stop_id"),
				StopSequence: atoi(field("stop_sequence")),
			})
		}},
		{"shapes.txt", false, func(field func(string) string) {
			shapeID := field("shape_id")
			data.Shapes[shapeID] = append(data.Shapes[shapeID], ShapePoint{
				ShapePtLat:      atof(field("shape_pt_lat")),
				ShapePtLon:      atof(field("shape_pt_lon")),
				ShapePtSequence: atoi(field("shape_pt_sequence")),
			})
		}},
	}

	for _, t := range tables {
		f, ok := files[t.name]
		if !ok {
			if t.required {
				return nil, fmt.Errorf("%w: %s", ErrMissingTable, t.name)
			}
			continue
		}
		if err := readTable(f, t.row); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", t.name, err)
		}
	}

	for id := range data.Shapes {
		slices.SortFunc(data.Shapes[id], func(a, b ShapePoint) int {
			return a.ShapePtSequence - b.ShapePtSequence
		})
	}

	logger.Info("GTFS parsed",
		"routes", len(data.Routes),
		"stops", len(data.Stops),
		"trips", len(data.Trips),
		"shapes", len(data.Shapes),
	)

	return data, nil
}

// readTable calls row once per CSV record. Malformed records are skipped.
func readTable(f *zip.File, row func(field func(string) string)) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return err
	}
	idx := makeIndex(header)

	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		row(func(name string) string {
			return getField(record, idx, name)
		})
	}

	if skipped > 0 {
		logger.Warn("GTFS: skipped malformed records", "file", f.Name, "count", skipped)
	}
	return nil
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int)
	for i, h := range header {
		// strip a UTF-8 BOM on the first column
		idx[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	return idx
}

func getField(record []string, idx map[string]int, field string) string {
	if i, ok := idx[field]; ok && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
