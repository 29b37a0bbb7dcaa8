package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/data"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/dataset"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// GeoJSONRepository reads the datasets from GeoJSON files. An empty path
// falls back to the dataset embedded in the binary.
type GeoJSONRepository struct {
	stationsPath string
	linesPath    string
}

// NewGeoJSONRepository creates a repository over the given files
func NewGeoJSONRepository(stationsPath, linesPath string) *GeoJSONRepository {
	return &GeoJSONRepository{stationsPath: stationsPath, linesPath: linesPath}
}

// Name identifies the source in health responses
func (r *GeoJSONRepository) Name() string {
	if r.stationsPath == "" && r.linesPath == "" {
		return "embedded"
	}
	return "geojson"
}

// LoadStations parses the station dataset, skipping malformed records
func (r *GeoJSONRepository) LoadStations(ctx context.Context) ([]models.Station, dataset.Report, error) {
	if r.stationsPath == "" {
		return dataset.ParseStations(data.Stations)
	}
	return dataset.LoadStationsFile(r.stationsPath)
}

// LoadLines parses the line dataset
func (r *GeoJSONRepository) LoadLines(ctx context.Context) ([]models.LineGeometry, error) {
	if r.linesPath == "" {
		return dataset.ParseLines(data.Lines)
	}
	return dataset.LoadLinesFile(r.linesPath)
}

// Ping checks that the dataset files are still readable
func (r *GeoJSONRepository) Ping(ctx context.Context) error {
	for _, path := range []string{r.stationsPath, r.linesPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("dataset file unavailable: %w", err)
		}
	}
	return nil
}
