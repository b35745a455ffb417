package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/wakeguard/internal/auth"
	"github.com/BradenHooton/wakeguard/internal/config"
	pkgauth "github.com/BradenHooton/wakeguard/pkg/auth"
	pkglogger "github.com/BradenHooton/wakeguard/pkg/logger"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPIN = "2468"

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		InactivityTimeout:   15 * time.Minute,
		SessionMaxAge:       24 * time.Hour,
		BruteForceThreshold: 3,
		BruteForceWindow:    5 * time.Minute,
	}
}

func testLimits() config.RateLimitConfig {
	return config.RateLimitConfig{
		Login:  config.LimitRule{Max: 5, Window: 15 * time.Minute},
		Wake:   config.LimitRule{Max: 5, Window: time.Minute},
		Status: config.LimitRule{Max: 30, Window: time.Minute},
	}
}

// recordingNotifier collects alerts sent from background goroutines
type recordingNotifier struct {
	alerts chan SecurityAlert
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{alerts: make(chan SecurityAlert, 10)}
}

func (n *recordingNotifier) SendSecurityAlert(ctx context.Context, alert SecurityAlert) error {
	n.alerts <- alert
	return nil
}

// lockedBuffer is an io.Writer safe to share with logging goroutines
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// auditLine returns the first audit record with the given event type
func auditLine(t *testing.T, out, eventType string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, `"event_type":"`+eventType+`"`) {
			return line
		}
	}
	t.Fatalf("no %s audit record in %q", eventType, out)
	return ""
}

type authFixture struct {
	service  *AuthService
	state    *SecurityState
	clock    *fakeClock
	notifier *recordingNotifier
	audit    *lockedBuffer
}

func newAuthFixture(t *testing.T, enabled bool) *authFixture {
	t.Helper()

	mode := auth.Disabled()
	if enabled {
		hash, err := pkgauth.HashPINWithCost(testPIN, bcrypt.MinCost)
		require.NoError(t, err)
		mode = auth.Enabled(hash)
	}

	clock := newFakeClock()
	state := NewSecurityState(testAuthConfig(), testLimits())
	state.SetClock(clock.Now)

	notifier := newRecordingNotifier()
	audit := &lockedBuffer{}
	svc := NewAuthService(
		auth.NewPinVerifier(mode),
		state,
		auth.NewTimingDelay(auth.TimingConfig{}),
		notifier,
		testLogger(),
		pkglogger.NewAuditLogger(slog.New(slog.NewJSONHandler(audit, nil))),
	)

	return &authFixture{service: svc, state: state, clock: clock, notifier: notifier, audit: audit}
}
