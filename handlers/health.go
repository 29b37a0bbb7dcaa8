package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// SourcePinger checks that the dataset source is reachable
type SourcePinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthIndex exposes the counts reported by the health endpoint
type HealthIndex interface {
	Len() int
	Line(line models.Line) []models.Station
}

// SessionCounter reports the number of live selection sessions
type SessionCounter interface {
	Count() int
}

// HealthHandler handles HTTP requests for service health
type HealthHandler struct {
	source   SourcePinger
	index    HealthIndex
	sessions SessionCounter
	lines    int
	loadedAt time.Time
}

// NewHealthHandler creates a new handler. lineCount is the number of line
// geometries loaded with the dataset.
func NewHealthHandler(source SourcePinger, index HealthIndex, sessions SessionCounter, lineCount int, loadedAt time.Time) *HealthHandler {
	return &HealthHandler{
		source:   source,
		index:    index,
		sessions: sessions,
		lines:    lineCount,
		loadedAt: loadedAt,
	}
}

// GetHealth handles GET /health
// Returns dataset counts per line and the state of the dataset source
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := models.DatasetHealth{
		Source:         h.source.Name(),
		SourceStatus:   "connected",
		StationCount:   h.index.Len(),
		LineCount:      h.lines,
		Lines:          make([]models.LineHealth, 0, len(models.AllLines())),
		ActiveSessions: h.sessions.Count(),
		LoadedAt:       h.loadedAt,
		Timestamp:      time.Now().UTC(),
	}

	for _, line := range models.AllLines() {
		response.Lines = append(response.Lines, models.LineHealth{
			Line:         line,
			StationCount: len(h.index.Line(line)),
		})
	}

	sourceOK := true
	if err := h.source.Ping(ctx); err != nil {
		sourceOK = false
		response.SourceStatus = "disconnected"
		response.Error = err.Error()
	}
	response.Status = models.CalculateHealthStatus(sourceOK, response.Lines)

	status := http.StatusOK
	if response.Status == models.StatusError {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, "", response)
}

// GetLiveness handles GET /healthz
func (h *HealthHandler) GetLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "", map[string]string{"status": models.StatusOK})
}
