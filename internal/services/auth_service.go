package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/BradenHooton/wakeguard/internal/auth"
	"github.com/BradenHooton/wakeguard/internal/models"
	pkglogger "github.com/BradenHooton/wakeguard/pkg/logger"
	"github.com/google/uuid"
)

const alertTimeout = 10 * time.Second

// LoginRequest is one login attempt
type LoginRequest struct {
	PIN               string
	IP                string
	UserAgent         string
	PreviousSessionID string // session currently held by the client, replaced on success
}

// LoginResult is returned on a successful login
type LoginResult struct {
	SessionID   string
	IP          string
	IsNewDevice bool
	CreatedAt   time.Time
}

// AuthStatus answers whether the caller holds an active session
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	AuthEnabled   bool   `json:"authEnabled"`
	SessionAge    *int64 `json:"sessionAge"` // milliseconds, null when not authenticated
}

// AuthService handles login, logout and session validation
type AuthService struct {
	verifier    *auth.PinVerifier
	state       *SecurityState
	timing      *auth.TimingDelay
	alerts      AlertNotifier
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService. alerts may be nil.
func NewAuthService(verifier *auth.PinVerifier, state *SecurityState, timing *auth.TimingDelay, alerts AlertNotifier, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		verifier:    verifier,
		state:       state,
		timing:      timing,
		alerts:      alerts,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// AuthEnabled reports whether a PIN is required
func (s *AuthService) AuthEnabled() bool {
	return s.verifier.IsEnabled()
}

// Login checks the brute-force tracker, then the PIN, then opens a session.
// A blocked IP never reaches PIN verification.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.PIN == "" {
		return nil, fmt.Errorf("%w: pin is required", models.ErrValidation)
	}

	start := time.Now()

	// Check and RecordFailure are separate critical sections around bcrypt, so
	// concurrent guesses can overshoot the threshold. The login limiter bounds it.
	if blocked, retryAfter := s.state.BruteForce.Check(req.IP); blocked {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     pkglogger.EventLoginBlocked,
			IPAddress:     req.IP,
			UserAgent:     req.UserAgent,
			FailureReason: "brute_force_suspect",
		})
		return nil, &models.RetryAfterError{Err: models.ErrBruteForceBlocked, RetryAfter: retryAfter}
	}

	if !s.verifier.Verify(req.PIN) {
		attempts := s.state.BruteForce.RecordFailure(req.IP)
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     pkglogger.EventLoginFailed,
			IPAddress:     req.IP,
			UserAgent:     req.UserAgent,
			FailureReason: "invalid_pin",
			Metadata:      map[string]string{"attempts": strconv.Itoa(attempts)},
		})
		if attempts == s.state.BruteForce.Threshold() {
			s.notify(SecurityAlert{
				Kind:      AlertBruteForce,
				IP:        req.IP,
				UserAgent: req.UserAgent,
				Attempts:  attempts,
				At:        s.state.Now(),
			})
		}
		s.timing.WaitFrom(start)
		return nil, models.ErrInvalidPIN
	}

	s.state.BruteForce.Clear(req.IP)

	now := s.state.Now()
	isNewDevice := !s.state.Sessions.HasSessionFromIP(ctx, req.IP) && !s.state.History.ContainsIP(ctx, req.IP)

	if req.PreviousSessionID != "" {
		s.state.Sessions.Delete(ctx, req.PreviousSessionID)
	}

	s.state.History.Append(ctx, models.LoginHistoryEntry{
		ID:          uuid.New().String(),
		IP:          req.IP,
		UserAgent:   req.UserAgent,
		LoginTime:   now.UTC().Format(time.RFC3339),
		Timestamp:   now.UnixMilli(),
		IsNewDevice: isNewDevice,
		At:          now,
	})

	session := &models.Session{
		Token:         uuid.New().String(),
		Authenticated: true,
		CreatedAt:     now,
		LastActivity:  now,
		OriginIP:      req.IP,
		UserAgent:     req.UserAgent,
	}
	if err := s.state.Sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventLoginSuccess,
		SessionID: session.Token,
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
		Success:   true,
		Metadata:  map[string]string{"new_device": strconv.FormatBool(isNewDevice)},
	})

	if isNewDevice && s.verifier.IsEnabled() {
		s.notify(SecurityAlert{Kind: AlertNewDevice, IP: req.IP, UserAgent: req.UserAgent, At: now})
	}

	return &LoginResult{
		SessionID:   session.Token,
		IP:          req.IP,
		IsNewDevice: isNewDevice,
		CreatedAt:   now,
	}, nil
}

// Logout destroys the session if there is one. It is idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID, ip string) error {
	if sessionID == "" {
		return nil
	}
	if s.state.Sessions.Delete(ctx, sessionID) {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType: pkglogger.EventLogout,
			SessionID: sessionID,
			IPAddress: ip,
			Success:   true,
		})
	}
	return nil
}

// Authenticate resolves an active session and slides its inactivity window.
// Idle sessions are destroyed and reported as models.ErrSessionExpired.
func (s *AuthService) Authenticate(ctx context.Context, sessionID, ip string) (*models.Session, error) {
	session, err := s.state.Sessions.Touch(ctx, sessionID, s.state.Now(), s.state.InactivityTimeout, s.state.MaxAge)
	if err != nil {
		if errors.Is(err, models.ErrSessionExpired) {
			s.auditExpired(sessionID, ip, "inactivity")
			return nil, err
		}
		return nil, fmt.Errorf("%w: no active session", models.ErrAuthRequired)
	}
	return session, nil
}

// Status reports whether sessionID names an active session without
// refreshing it. With authentication disabled every caller is authenticated.
// A session found expired here is destroyed and audited like any other expiry.
func (s *AuthService) Status(ctx context.Context, sessionID, ip string) AuthStatus {
	status := AuthStatus{AuthEnabled: s.verifier.IsEnabled()}
	if !status.AuthEnabled {
		status.Authenticated = true
	}
	if sessionID == "" {
		return status
	}

	now := s.state.Now()
	session, err := s.state.Sessions.Peek(ctx, sessionID, now, s.state.InactivityTimeout, s.state.MaxAge)
	if err != nil {
		if errors.Is(err, models.ErrSessionExpired) {
			s.auditExpired(sessionID, ip, "inactivity")
		}
		return status
	}

	age := session.Age(now).Milliseconds()
	status.Authenticated = session.Authenticated
	status.SessionAge = &age
	return status
}

// History returns up to limit login history entries, newest first, and the
// total number retained
func (s *AuthService) History(ctx context.Context, limit int) ([]models.LoginHistoryEntry, int) {
	return s.state.History.List(ctx, limit), s.state.History.Len()
}

// Sweep evicts expired security state and audits every session it removed
// against the address that opened it
func (s *AuthService) Sweep(ctx context.Context) SweepStats {
	stats := s.state.Sweep(ctx)
	for _, session := range stats.Expired {
		s.auditExpired(session.Token, session.OriginIP, "swept")
	}
	return stats
}

func (s *AuthService) auditExpired(sessionID, ip, reason string) {
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     pkglogger.EventSessionExpired,
		SessionID:     sessionID,
		IPAddress:     ip,
		FailureReason: reason,
	})
}

// notify sends an alert without holding up the request
func (s *AuthService) notify(alert SecurityAlert) {
	if s.alerts == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		if err := s.alerts.SendSecurityAlert(ctx, alert); err != nil {
			s.logger.Warn("security alert not delivered",
				slog.String("kind", alert.Kind),
				slog.Any("error", err))
		}
	}()
}
