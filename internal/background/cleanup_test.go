package background

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BradenHooton/wakeguard/internal/config"
	"github.com/BradenHooton/wakeguard/internal/services"
	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep(ctx context.Context) services.SweepStats {
	s.calls.Add(1)
	return services.SweepStats{Sessions: 1}
}

func newTestManager(s Sweeper) *CleanupManager {
	return NewCleanupManager(s, slog.New(slog.NewTextHandler(io.Discard, nil)), 5*time.Millisecond)
}

func TestCleanupManager_SweepsPeriodically(t *testing.T) {
	sweeper := &countingSweeper{}
	cm := newTestManager(sweeper)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, time.Millisecond)

	cm.Stop()
	cm.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

func TestCleanupManager_StopsOnContextCancel(t *testing.T) {
	cm := newTestManager(&countingSweeper{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager ignored context cancellation")
	}
}

func TestCleanupManager_SweepsRealState(t *testing.T) {
	state := services.NewSecurityState(
		config.AuthConfig{
			InactivityTimeout:   15 * time.Minute,
			SessionMaxAge:       24 * time.Hour,
			BruteForceThreshold: 3,
			BruteForceWindow:    5 * time.Minute,
		},
		config.RateLimitConfig{
			Login:  config.LimitRule{Max: 5, Window: 15 * time.Minute},
			Wake:   config.LimitRule{Max: 5, Window: time.Minute},
			Status: config.LimitRule{Max: 30, Window: time.Minute},
		},
	)
	state.BruteForce.RecordFailure("192.0.2.1")

	start := time.Now()
	state.SetClock(func() time.Time { return start.Add(time.Hour) })

	cm := newTestManager(state)
	cm.runCleanup(context.Background())

	assert.Equal(t, 0, state.BruteForce.Len())
}
