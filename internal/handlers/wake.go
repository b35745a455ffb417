package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/BradenHooton/wakeguard/internal/auth"
	"github.com/BradenHooton/wakeguard/internal/models"
	"github.com/BradenHooton/wakeguard/internal/services"
	pkghttp "github.com/BradenHooton/wakeguard/pkg/http"
)

// WakeServiceInterface defines the wake and status operations
type WakeServiceInterface interface {
	Wake(ctx context.Context, sessionID, ip string) (*services.WakeResult, error)
	Status(ctx context.Context) (*services.TargetStatus, error)
}

// WakeHandler handles the privileged target actions
type WakeHandler struct {
	service  WakeServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewWakeHandler creates a new WakeHandler
func NewWakeHandler(service WakeServiceInterface, ipConfig *pkghttp.IPConfig) *WakeHandler {
	return &WakeHandler{service: service, ipConfig: ipConfig}
}

// WakeResponse is returned once the wake signal was dispatched
type WakeResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse is the result of a reachability probe
type StatusResponse struct {
	Success   bool      `json:"success"`
	Online    bool      `json:"online"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

// Wake sends the wake signal. Process output never reaches the client.
// @Router /api/wake [post]
func (h *WakeHandler) Wake(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if session := auth.GetSessionFromContext(r); session != nil {
		sessionID = session.Token
	}

	result, err := h.service.Wake(r.Context(), sessionID, pkghttp.ExtractClientIP(r, h.ipConfig))
	if err != nil {
		if errors.Is(err, models.ErrConfiguration) {
			pkghttp.WriteError(w, http.StatusInternalServerError, "configuration_error", "Server configuration error")
			return
		}
		pkghttp.WriteError(w, http.StatusInternalServerError, "wake_failed", "Failed to send wake signal")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, WakeResponse{
		Success:   true,
		Message:   "Wake signal sent",
		Timestamp: result.Timestamp,
	})
}

// Status probes the configured target
// @Router /api/status [get]
func (h *WakeHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTargetNotConfigured):
			pkghttp.WriteError(w, http.StatusBadRequest, "target_not_configured", "Target IP address is not configured")
		case errors.Is(err, models.ErrInvalidTarget):
			pkghttp.WriteError(w, http.StatusBadRequest, "invalid_target", "Configured target IP address is invalid")
		default:
			pkghttp.WriteError(w, http.StatusInternalServerError, "status_check_failed", "Failed to check status")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, StatusResponse{
		Success:   true,
		Online:    status.Online,
		IP:        status.IP,
		Timestamp: status.Timestamp,
	})
}
