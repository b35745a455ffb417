package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/wakeguard/internal/handlers"
	"github.com/BradenHooton/wakeguard/internal/models"
	"github.com/BradenHooton/wakeguard/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestWake_Success(t *testing.T) {
	var gotSession, gotIP string
	handler := handlers.NewWakeHandler(&handlers.MockWakeService{
		WakeFunc: func(ctx context.Context, sessionID, ip string) (*services.WakeResult, error) {
			gotSession, gotIP = sessionID, ip
			return &services.WakeResult{Timestamp: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/wake", nil)
	req.RemoteAddr = "192.0.2.44:8080"
	req = handlers.WithSessionContext(req, &models.Session{Token: "sid-9"})
	w := httptest.NewRecorder()
	handler.Wake(w, req)

	var resp handlers.WakeResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Wake signal sent", resp.Message)
	assert.Equal(t, "sid-9", gotSession)
	assert.Equal(t, "192.0.2.44", gotIP)
}

func TestWake_Failures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"unknown action", fmt.Errorf("%w: not allowlisted", models.ErrConfiguration), "configuration_error"},
		{"exec failure", fmt.Errorf("%w: /usr/local/bin/wakepc: exit status 1", models.ErrActionFailed), "wake_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.NewWakeHandler(&handlers.MockWakeService{
				WakeFunc: func(ctx context.Context, sessionID, ip string) (*services.WakeResult, error) {
					return nil, tt.err
				},
			}, nil)

			w := httptest.NewRecorder()
			handler.Wake(w, httptest.NewRequest(http.MethodPost, "/api/wake", nil))

			handlers.AssertErrorResponse(t, w, http.StatusInternalServerError, tt.wantCode)
			assert.NotContains(t, w.Body.String(), "/usr/local/bin")
		})
	}
}

func TestTargetStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     *services.TargetStatus
		err        error
		wantStatus int
		wantCode   string
	}{
		{"online", &services.TargetStatus{Online: true, IP: "192.168.1.50"}, nil, http.StatusOK, ""},
		{"offline", &services.TargetStatus{Online: false, IP: "192.168.1.50"}, nil, http.StatusOK, ""},
		{"not configured", nil, models.ErrTargetNotConfigured, http.StatusBadRequest, "target_not_configured"},
		{"invalid", nil, fmt.Errorf("%w: %q", models.ErrInvalidTarget, "999.1.1.1"), http.StatusBadRequest, "invalid_target"},
		{"probe failure", nil, models.ErrActionFailed, http.StatusInternalServerError, "status_check_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.NewWakeHandler(&handlers.MockWakeService{
				StatusFunc: func(ctx context.Context) (*services.TargetStatus, error) {
					return tt.status, tt.err
				},
			}, nil)

			w := httptest.NewRecorder()
			handler.Status(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

			if tt.err != nil {
				handlers.AssertErrorResponse(t, w, tt.wantStatus, tt.wantCode)
				return
			}

			var resp handlers.StatusResponse
			handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.status.Online, resp.Online)
			assert.Equal(t, "192.168.1.50", resp.IP)
		})
	}
}

func TestHealth(t *testing.T) {
	handler := handlers.NewHealthHandler("1.2.0", true, false)

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var resp handlers.HealthResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.0", resp.Version)
	assert.True(t, resp.AuthEnabled)
	assert.False(t, resp.TargetConfigured)
	assert.False(t, resp.Timestamp.IsZero())
}
