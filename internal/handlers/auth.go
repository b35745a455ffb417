package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BradenHooton/wakeguard/internal/auth"
	"github.com/BradenHooton/wakeguard/internal/models"
	"github.com/BradenHooton/wakeguard/internal/services"
	pkghttp "github.com/BradenHooton/wakeguard/pkg/http"
)

const defaultHistoryLimit = 20

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	Logout(ctx context.Context, sessionID, ip string) error
	Status(ctx context.Context, sessionID, ip string) services.AuthStatus
	History(ctx context.Context, limit int) ([]models.LoginHistoryEntry, int)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	tokens   *auth.SessionTokenManager
	cookies  auth.CookieConfig
	ipConfig *pkghttp.IPConfig
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, tokens *auth.SessionTokenManager, cookies auth.CookieConfig, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		tokens:   tokens,
		cookies:  cookies,
		ipConfig: ipConfig,
		logger:   logger,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	PIN string `json:"pin" validate:"required"`
}

// LoginResponse is returned on a successful login
type LoginResponse struct {
	Success     bool   `json:"success"`
	IP          string `json:"ip"`
	IsNewDevice bool   `json:"isNewDevice"`
}

// SessionsQuery is the query string of the login history listing
type SessionsQuery struct {
	Limit int `validate:"gte=1,lte=100"`
}

// SessionsResponse lists login history, newest first
type SessionsResponse struct {
	Success  bool                       `json:"success"`
	Sessions []models.LoginHistoryEntry `json:"sessions"`
	Total    int                        `json:"total"`
}

// SuccessResponse is the body of operations with nothing else to report
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Login handles PIN login
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "PIN is required")
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	previous, _ := auth.SessionIDFromRequest(r, h.tokens)

	result, err := h.service.Login(r.Context(), services.LoginRequest{
		PIN:               req.PIN,
		IP:                ip,
		UserAgent:         r.UserAgent(),
		PreviousSessionID: previous,
	})
	if err != nil {
		h.writeLoginError(w, err, ip)
		return
	}

	token, err := h.tokens.Issue(result.SessionID, result.CreatedAt)
	if err != nil {
		h.logger.Error("failed to sign session cookie", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Failed to create session")
		return
	}
	auth.SetSessionCookie(w, token, h.tokens.MaxAge(), h.cookies)

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		Success:     true,
		IP:          result.IP,
		IsNewDevice: result.IsNewDevice,
	})
}

func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error, ip string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		pkghttp.WriteBadRequest(w, "PIN is required")
	case errors.Is(err, models.ErrBruteForceBlocked):
		pkghttp.SetRetryAfter(w, models.RetryAfter(err))
		pkghttp.WriteErrorResponse(w, http.StatusTooManyRequests, pkghttp.ErrorResponse{
			Error:   "too_many_attempts",
			Message: "Too many failed attempts. Please try again later.",
			IP:      ip,
		})
	case errors.Is(err, models.ErrInvalidPIN):
		pkghttp.WriteErrorResponse(w, http.StatusUnauthorized, pkghttp.ErrorResponse{
			Error:   "invalid_pin",
			Message: "Invalid PIN",
			IP:      ip,
		})
	default:
		h.logger.Error("login failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Login failed")
	}
}

// Logout destroys the caller's session. It always succeeds for a client
// without one.
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := auth.SessionIDFromRequest(r, h.tokens)
	ip := pkghttp.ExtractClientIP(r, h.ipConfig)

	if err := h.service.Logout(r.Context(), sessionID, ip); err != nil {
		h.logger.Error("logout failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Logout failed")
		return
	}

	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Status reports whether the caller is logged in and whether login is required
// @Router /api/auth/status [get]
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := auth.SessionIDFromRequest(r, h.tokens)
	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	pkghttp.WriteJSON(w, http.StatusOK, h.service.Status(r.Context(), sessionID, ip))
}

// Sessions lists recent successful logins
// @Router /api/auth/sessions [get]
func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	query := SessionsQuery{Limit: defaultHistoryLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			pkghttp.WriteBadRequest(w, "limit must be a number")
			return
		}
		query.Limit = limit
	}
	if err := ValidateRequest(query); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	entries, total := h.service.History(r.Context(), query.Limit)
	pkghttp.WriteJSON(w, http.StatusOK, SessionsResponse{
		Success:  true,
		Sessions: entries,
		Total:    total,
	})
}
