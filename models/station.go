package models

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var validate = validator.New()

// Station is a single Subte station from the station dataset.
// Stations are loaded once and never mutated afterwards.
type Station struct {
	ID          int       `json:"id" validate:"gte=0"`
	Name        string    `json:"name" validate:"required"`
	Line        Line      `json:"line" validate:"required,oneof=A B C D E H"`
	Coordinates orb.Point `json:"coordinates"` // [lon, lat]
	Address     *string   `json:"address,omitempty"`
	Info        *string   `json:"info,omitempty"`
	Connections []Line    `json:"connections" validate:"dive,oneof=A B C D E H"`
}

// StationRef is a lightweight reference to a station
type StationRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Line Line   `json:"line"`
}

// Validate checks the station fields loaded from a dataset
func (s *Station) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("station %d: %w", s.ID, err)
	}

	lon, lat := s.Coordinates.Lon(), s.Coordinates.Lat()
	if lat < -90 || lat > 90 {
		return errors.New("latitude out of range: must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return errors.New("longitude out of range: must be between -180 and 180")
	}

	return nil
}

// Ref returns the lightweight reference for s
func (s Station) Ref() StationRef {
	return StationRef{ID: s.ID, Name: s.Name, Line: s.Line}
}

// Color returns the color of the station's line
func (s Station) Color() string {
	return GetLineColor(s.Line)
}

// ConnectsTo reports whether the station has a transfer to line
func (s Station) ConnectsTo(line Line) bool {
	return slices.Contains(s.Connections, line)
}

// Feature converts the station into a GeoJSON Point feature using the
// canonical property names
func (s Station) Feature() *geojson.Feature {
	f := geojson.NewFeature(s.Coordinates)
	f.ID = s.ID

	connections := make([]string, len(s.Connections))
	for i, c := range s.Connections {
		connections[i] = string(c)
	}

	f.Properties["id"] = s.ID
	f.Properties["name"] = s.Name
	f.Properties["line"] = string(s.Line)
	f.Properties["color"] = s.Color()
	f.Properties["connections"] = connections
	if s.Address != nil {
		f.Properties["address"] = *s.Address
	}
	if s.Info != nil {
		f.Properties["info"] = *s.Info
	}

	return f
}

// StationsFeatureCollection converts stations into a FeatureCollection,
// preserving their order
func StationsFeatureCollection(stations []Station) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range stations {
		fc.Append(s.Feature())
	}
	return fc
}

// LinesFeatureCollection converts line geometries into a FeatureCollection
func LinesFeatureCollection(lines []LineGeometry) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range lines {
		var geom orb.Geometry = l.Coordinates
		if len(l.Coordinates) == 1 {
			geom = l.Coordinates[0]
		}
		f := geojson.NewFeature(geom)
		f.Properties["line"] = string(l.Line)
		f.Properties["color"] = l.Color
		f.Properties["length_meters"] = l.LengthMeters
		fc.Append(f)
	}
	return fc
}
