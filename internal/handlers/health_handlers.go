package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
)

const healthStatus = "Server is running"

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status string `json:"status"`
	Port   int    `json:"port"`
}

// HealthHandler reports that the server is up
type HealthHandler struct {
	port int
	log  zerolog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(port int, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		port: port,
		log:  log,
	}
}

// Health answers with the status and the configured port
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.log, http.StatusOK, HealthResponse{
		Status: healthStatus,
		Port:   h.port,
	})
}
