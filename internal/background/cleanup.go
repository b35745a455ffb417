package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/wakeguard/internal/services"
)

// Sweeper evicts expired in-memory security state
type Sweeper interface {
	Sweep(ctx context.Context) services.SweepStats
}

// CleanupManager periodically sweeps expired sessions, brute-force records
// and rate limiter windows so idle keys do not accumulate
type CleanupManager struct {
	state    Sweeper
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(state Sweeper, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		state:    state,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep every interval until Stop is called or ctx ends
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	stats := cm.state.Sweep(ctx)

	if stats.Sessions+stats.FailedAttempts+stats.LimiterWindows > 0 {
		cm.logger.Debug("expired security state swept",
			slog.Int("sessions", stats.Sessions),
			slog.Int("failed_attempts", stats.FailedAttempts),
			slog.Int("limiter_windows", stats.LimiterWindows))
	}
}

// Stop signals the cleanup manager to stop. It is safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
