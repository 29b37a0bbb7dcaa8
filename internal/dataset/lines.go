package dataset

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/logger"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

var validate = validator.New()

// LoadLinesFile reads and parses a line GeoJSON file
func LoadLinesFile(path string) ([]models.LineGeometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return ParseLines(data)
}

// ParseLines parses a line FeatureCollection. Features of the same line are
// merged into one MultiLineString. Lines are returned in display order.
func ParseLines(data []byte) ([]models.LineGeometry, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse line GeoJSON: %w", err)
	}

	byLine := make(map[models.Line]*models.LineGeometry)

	for i, f := range fc.Features {
		rawLine := stringProperty(f.Properties, "line", "LINEA", "linea", "line_code")
		line, ok := models.ParseLine(rawLine)
		if !ok {
			logger.Warn("Dataset: skipping line feature", "index", i, "line", rawLine)
			continue
		}

		var parts orb.MultiLineString
		switch g := f.Geometry.(type) {
		case orb.LineString:
			parts = orb.MultiLineString{g}
		case orb.MultiLineString:
			parts = g
		default:
			logger.Warn("Dataset: skipping non-linear line feature", "index", i, "line", line)
			continue
		}

		lg, ok := byLine[line]
		if !ok {
			lg = &models.LineGeometry{Line: line, Color: models.GetLineColor(line)}
			byLine[line] = lg
		}
		if color := stringProperty(f.Properties, "color", "COLOR"); validate.Var(color, "required,hexcolor") == nil {
			lg.Color = color
		}

		for _, ls := range parts {
			if len(ls) < 2 {
				continue
			}
			lg.Coordinates = append(lg.Coordinates, ls)
			lg.LengthMeters += geo.LengthHaversine(ls)
		}
	}

	lines := make([]models.LineGeometry, 0, len(byLine))
	for _, line := range models.AllLines() {
		if lg, ok := byLine[line]; ok && len(lg.Coordinates) > 0 {
			lines = append(lines, *lg)
		}
	}

	return lines, nil
}
