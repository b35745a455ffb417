package handlers

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/wakeguard/pkg/http"
)

// HealthResponse reports liveness and non-sensitive configuration
type HealthResponse struct {
	Status           string    `json:"status"`
	Version          string    `json:"version"`
	AuthEnabled      bool      `json:"authEnabled"`
	TargetConfigured bool      `json:"targetConfigured"`
	Timestamp        time.Time `json:"timestamp"`
}

// HealthHandler answers liveness probes
type HealthHandler struct {
	version          string
	authEnabled      bool
	targetConfigured bool
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(version string, authEnabled, targetConfigured bool) *HealthHandler {
	return &HealthHandler{
		version:          version,
		authEnabled:      authEnabled,
		targetConfigured: targetConfigured,
	}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		Version:          h.version,
		AuthEnabled:      h.authEnabled,
		TargetConfigured: h.targetConfigured,
		Timestamp:        time.Now().UTC(),
	})
}
