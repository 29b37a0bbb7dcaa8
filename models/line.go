package models

import (
	"strings"

	"github.com/paulmach/orb"
)

// Line identifies a Subte line
type Line string

const (
	LineA Line = "A"
	LineB Line = "B"
	LineC Line = "C"
	LineD Line = "D"
	LineE Line = "E"
	LineH Line = "H"
)

// AllLines returns all Subte lines in display order
func AllLines() []Line {
	return []Line{LineA, LineB, LineC, LineD, LineE, LineH}
}

// Subte line colors (SBASE official colors)
var LineColors = map[Line]string{
	LineA: "#18CCF5", // Light blue
	LineB: "#EB0909", // Red
	LineC: "#233AA8", // Blue
	LineD: "#02DB2E", // Green
	LineE: "#C618CC", // Purple
	LineH: "#FFDD00", // Yellow
}

// DefaultLineColor is used for anything outside the line table
const DefaultLineColor = "#888888"

// GetLineColor returns the official color for a Subte line
func GetLineColor(line Line) string {
	if color, ok := LineColors[line]; ok {
		return color
	}
	return DefaultLineColor
}

// Valid reports whether l is one of the Subte lines
func (l Line) Valid() bool {
	_, ok := LineColors[l]
	return ok
}

// ParseLine normalizes the line codes found in the datasets.
// Accepts "A", "a", " H ", "Línea B", "LINEA C" and "Linea_D".
func ParseLine(s string) (Line, bool) {
	code := strings.ToUpper(strings.TrimSpace(s))
	for _, prefix := range []string{"LÍNEA", "LINEA"} {
		if strings.HasPrefix(code, prefix) {
			code = strings.TrimLeft(strings.TrimPrefix(code, prefix), " _-")
			break
		}
	}

	line := Line(code)
	if !line.Valid() {
		return "", false
	}
	return line, true
}

// LineGeometry is the drawable shape of a line from the line dataset
type LineGeometry struct {
	Line         Line                `json:"line"`
	Color        string              `json:"color"`
	Coordinates  orb.MultiLineString `json:"coordinates"`
	LengthMeters float64             `json:"lengthMeters"`
}

// LineSummary is the per-line entry returned by GET /api/lines
type LineSummary struct {
	Line         Line    `json:"line"`
	Color        string  `json:"color"`
	StationCount int     `json:"stationCount"`
	FirstStation string  `json:"firstStation,omitempty"`
	LastStation  string  `json:"lastStation,omitempty"`
	LengthMeters float64 `json:"lengthMeters"`
}
