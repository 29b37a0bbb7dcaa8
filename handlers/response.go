package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/logger"
)

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// writeJSON encodes v with the given status. An empty cacheControl means
// the response must not be cached.
func writeJSON(w http.ResponseWriter, status int, cacheControl string, v interface{}) {
	if cacheControl == "" {
		cacheControl = "no-store"
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, details map[string]interface{}) {
	writeJSON(w, status, "", ErrorResponse{Error: msg, Details: details})
}
