package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MapStyle describes the MapLibre map served to the frontend
type MapStyle struct {
	Basemap  BasemapConfig      `yaml:"basemap" validate:"required"`
	Camera   CameraConfig       `yaml:"camera" validate:"required"`
	Lines    LineLayerConfig    `yaml:"lines" validate:"required"`
	Stations StationLayerConfig `yaml:"stations" validate:"required"`
	Focus    FocusConfig        `yaml:"focus" validate:"required"`
}

// BasemapConfig is the raster tile source drawn under the subte layers
type BasemapConfig struct {
	Tiles       []string `yaml:"tiles" validate:"required,min=1,dive,required"`
	TileSize    int      `yaml:"tileSize" validate:"oneof=256 512"`
	Attribution string   `yaml:"attribution"`
}

// CameraConfig is the initial view
type CameraConfig struct {
	Center [2]float64 `yaml:"center"` // [lon, lat]
	Zoom   float64    `yaml:"zoom" validate:"gte=0,lte=22"`
}

// LineLayerConfig styles the line layer
type LineLayerConfig struct {
	Width         float64 `yaml:"width" validate:"gt=0"`
	FallbackColor string  `yaml:"fallbackColor" validate:"required,hexcolor"`
}

// StationLayerConfig styles the station circles
type StationLayerConfig struct {
	Radius      float64 `yaml:"radius" validate:"gt=0"`
	Color       string  `yaml:"color" validate:"required,hexcolor"`
	StrokeWidth float64 `yaml:"strokeWidth" validate:"gte=0"`
	StrokeColor string  `yaml:"strokeColor" validate:"required,hexcolor"`
}

// FocusConfig controls the camera when a station is selected
type FocusConfig struct {
	Zoom float64 `yaml:"zoom" validate:"gte=0,lte=22"`
}

// DefaultMapStyle is the stock Subte map: OSM raster tiles centered on
// the Buenos Aires microcentro
func DefaultMapStyle() MapStyle {
	return MapStyle{
		Basemap: BasemapConfig{
			Tiles:       []string{"https://tile.openstreetmap.org/{z}/{x}/{y}.png"},
			TileSize:    256,
			Attribution: "© OpenStreetMap contributors",
		},
		Camera: CameraConfig{
			Center: [2]float64{-58.4173, -34.6118},
			Zoom:   12,
		},
		Lines: LineLayerConfig{
			Width:         4,
			FallbackColor: "#000000",
		},
		Stations: StationLayerConfig{
			Radius:      6,
			Color:       "#FFFFFF",
			StrokeWidth: 2,
			StrokeColor: "#000000",
		},
		Focus: FocusConfig{
			Zoom: 15,
		},
	}
}

// LoadMapStyle reads a YAML map style file over the defaults and validates it.
// An empty path returns the defaults.
func LoadMapStyle(path string) (MapStyle, error) {
	style := DefaultMapStyle()
	if path == "" {
		return style, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return MapStyle{}, fmt.Errorf("failed to read map style: %w", err)
	}

	if err := yaml.Unmarshal(data, &style); err != nil {
		return MapStyle{}, fmt.Errorf("failed to parse map style: %w", err)
	}

	if err := style.Validate(); err != nil {
		return MapStyle{}, err
	}

	return style, nil
}

// Validate checks field constraints and the camera center range
func (s MapStyle) Validate() error {
	v := validator.New()
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("invalid map style: %w", err)
	}

	lon, lat := s.Camera.Center[0], s.Camera.Center[1]
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return errors.New("invalid map style: camera center out of range")
	}

	return nil
}
