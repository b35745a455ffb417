package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/wakeguard/internal/auth"
	"github.com/BradenHooton/wakeguard/internal/models"
	"github.com/BradenHooton/wakeguard/internal/services"
	pkghttp "github.com/BradenHooton/wakeguard/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext attaches an active session as RequireAuth would
func WithSessionContext(req *http.Request, session *models.Session) *http.Request {
	ctx := context.WithValue(req.Context(), auth.SessionContextKey, session)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.False(t, resp.Success)
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc   func(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	LogoutFunc  func(ctx context.Context, sessionID, ip string) error
	StatusFunc  func(ctx context.Context, sessionID, ip string) services.AuthStatus
	HistoryFunc func(ctx context.Context, limit int) ([]models.LoginHistoryEntry, int)
}

func (m *MockAuthService) Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrInvalidPIN
	}
	return m.LoginFunc(ctx, req)
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID, ip string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, sessionID, ip)
}

func (m *MockAuthService) Status(ctx context.Context, sessionID, ip string) services.AuthStatus {
	if m.StatusFunc == nil {
		return services.AuthStatus{AuthEnabled: true}
	}
	return m.StatusFunc(ctx, sessionID, ip)
}

func (m *MockAuthService) History(ctx context.Context, limit int) ([]models.LoginHistoryEntry, int) {
	if m.HistoryFunc == nil {
		return []models.LoginHistoryEntry{}, 0
	}
	return m.HistoryFunc(ctx, limit)
}

// MockWakeService implements WakeServiceInterface for testing
type MockWakeService struct {
	WakeFunc   func(ctx context.Context, sessionID, ip string) (*services.WakeResult, error)
	StatusFunc func(ctx context.Context) (*services.TargetStatus, error)
}

func (m *MockWakeService) Wake(ctx context.Context, sessionID, ip string) (*services.WakeResult, error) {
	if m.WakeFunc == nil {
		return nil, models.ErrActionFailed
	}
	return m.WakeFunc(ctx, sessionID, ip)
}

func (m *MockWakeService) Status(ctx context.Context) (*services.TargetStatus, error) {
	if m.StatusFunc == nil {
		return nil, models.ErrTargetNotConfigured
	}
	return m.StatusFunc(ctx)
}
