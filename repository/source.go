// Package repository provides the station and line datasets from GeoJSON
// files, a SQLite store or Postgres. Every source returns stations in
// dataset order.
package repository

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/dataset"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// ErrNoDataset is returned by database sources that hold no dataset version
var ErrNoDataset = errors.New("no dataset version imported")

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStation(row rowScanner) (models.Station, error) {
	var (
		s           models.Station
		line        string
		lon, lat    float64
		connections string
	)
	if err := row.Scan(&s.ID, &s.Name, &line, &lon, &lat, &s.Address, &s.Info, &connections); err != nil {
		return models.Station{}, fmt.Errorf("failed to scan station: %w", err)
	}

	parsed, ok := models.ParseLine(line)
	if !ok {
		return models.Station{}, fmt.Errorf("station %d has unknown line %q", s.ID, line)
	}
	s.Line = parsed
	s.Coordinates = orb.Point{lon, lat}
	s.Connections = dataset.ParseConnections(connections, s.Line)

	return s, nil
}

func scanLine(row rowScanner) (models.LineGeometry, error) {
	var (
		lg       models.LineGeometry
		line     string
		geometry string
	)
	if err := row.Scan(&line, &lg.Color, &lg.LengthMeters, &geometry); err != nil {
		return models.LineGeometry{}, fmt.Errorf("failed to scan line: %w", err)
	}

	parsed, ok := models.ParseLine(line)
	if !ok {
		return models.LineGeometry{}, fmt.Errorf("unknown line %q", line)
	}
	lg.Line = parsed

	g, err := geojson.UnmarshalGeometry([]byte(geometry))
	if err != nil {
		return models.LineGeometry{}, fmt.Errorf("invalid geometry for line %s: %w", line, err)
	}
	switch c := g.Coordinates.(type) {
	case orb.MultiLineString:
		lg.Coordinates = c
	case orb.LineString:
		lg.Coordinates = orb.MultiLineString{c}
	default:
		return models.LineGeometry{}, fmt.Errorf("line %s has %s geometry", line, c.GeoJSONType())
	}

	return lg, nil
}
