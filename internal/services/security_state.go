package services

import (
	"context"
	"time"

	"github.com/BradenHooton/wakeguard/internal/config"
	"github.com/BradenHooton/wakeguard/internal/models"
	"github.com/BradenHooton/wakeguard/internal/repositories"
)

// SecurityState owns every piece of process-lifetime security state. A fresh
// instance is a full reset; nothing here is persisted.
type SecurityState struct {
	Sessions      *repositories.SessionRepository
	History       *repositories.LoginHistoryRepository
	BruteForce    *BruteForceTracker
	LoginLimiter  *RateLimiter
	WakeLimiter   *RateLimiter
	StatusLimiter *RateLimiter

	InactivityTimeout time.Duration
	MaxAge            time.Duration

	now func() time.Time
}

// SweepStats reports what one Sweep removed
type SweepStats struct {
	Sessions       int
	FailedAttempts int
	LimiterWindows int

	Expired []models.Session // the sessions counted in Sessions
}

// NewSecurityState builds empty state sized by the configuration
func NewSecurityState(authCfg config.AuthConfig, limits config.RateLimitConfig) *SecurityState {
	return &SecurityState{
		Sessions:          repositories.NewSessionRepository(),
		History:           repositories.NewLoginHistoryRepository(models.LoginHistoryCapacity),
		BruteForce:        NewBruteForceTracker(authCfg.BruteForceThreshold, authCfg.BruteForceWindow),
		LoginLimiter:      NewRateLimiter("login", limits.Login.Max, limits.Login.Window),
		WakeLimiter:       NewRateLimiter("wake", limits.Wake.Max, limits.Wake.Window),
		StatusLimiter:     NewRateLimiter("status", limits.Status.Max, limits.Status.Window),
		InactivityTimeout: authCfg.InactivityTimeout,
		MaxAge:            authCfg.SessionMaxAge,
		now:               time.Now,
	}
}

// SetClock replaces the time source of the state and every component in it
func (s *SecurityState) SetClock(now func() time.Time) {
	s.now = now
	s.BruteForce.now = now
	s.LoginLimiter.now = now
	s.WakeLimiter.now = now
	s.StatusLimiter.now = now
}

// Now returns the current time from the state's clock
func (s *SecurityState) Now() time.Time {
	return s.now()
}

// Sweep evicts expired sessions, brute-force records and limiter windows
func (s *SecurityState) Sweep(ctx context.Context) SweepStats {
	expired := s.Sessions.DeleteExpired(ctx, s.now(), s.InactivityTimeout, s.MaxAge)
	return SweepStats{
		Sessions:       len(expired),
		FailedAttempts: s.BruteForce.Sweep(),
		LimiterWindows: s.LoginLimiter.Sweep() + s.WakeLimiter.Sweep() + s.StatusLimiter.Sweep(),
		Expired:        expired,
	}
}
