package models

import "time"

// Health status values
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

// LineHealth reports how many stations of a line are indexed
type LineHealth struct {
	Line         Line `json:"line"`
	StationCount int  `json:"stationCount"`
}

// DatasetHealth is the JSON response for GET /health
type DatasetHealth struct {
	Status         string       `json:"status"`
	Source         string       `json:"source"`
	SourceStatus   string       `json:"sourceStatus"` // "connected", "disconnected"
	StationCount   int          `json:"stationCount"`
	LineCount      int          `json:"lineCount"`
	Lines          []LineHealth `json:"lines"`
	ActiveSessions int          `json:"activeSessions"`
	LoadedAt       time.Time    `json:"loadedAt"`
	Timestamp      time.Time    `json:"timestamp"`
	Error          string       `json:"error,omitempty"`
}

// CalculateHealthStatus derives the overall status: a line without stations
// degrades the dataset, an unreachable source is an error
func CalculateHealthStatus(sourceOK bool, lines []LineHealth) string {
	if !sourceOK {
		return StatusError
	}
	for _, l := range lines {
		if l.StationCount == 0 {
			return StatusDegraded
		}
	}
	return StatusOK
}
