package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/wakeguard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientIP = "198.51.100.20"

func login(f *authFixture, pin string) (*LoginResult, error) {
	return f.service.Login(context.Background(), LoginRequest{PIN: pin, IP: clientIP, UserAgent: "test-agent"})
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t, true)

	res, err := login(f, testPIN)
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, clientIP, res.IP)
	assert.True(t, res.IsNewDevice)
	assert.Equal(t, 1, f.state.Sessions.Count())
	assert.Equal(t, 1, f.state.History.Len())

	select {
	case alert := <-f.notifier.alerts:
		assert.Equal(t, AlertNewDevice, alert.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected new device alert")
	}
}

func TestLogin_MissingPIN(t *testing.T) {
	f := newAuthFixture(t, true)

	_, err := login(f, "")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 0, f.state.BruteForce.Len())
}

func TestLogin_InvalidPINRecordsFailure(t *testing.T) {
	f := newAuthFixture(t, true)

	for _, pin := range []string{"0000", "12", "abcd"} {
		_, err := login(f, pin)
		assert.ErrorIs(t, err, models.ErrInvalidPIN, "pin %q", pin)
	}
	assert.True(t, f.state.BruteForce.IsSuspect(clientIP))
	assert.Equal(t, 0, f.state.Sessions.Count())
}

func TestLogin_BlockedEvenWithCorrectPIN(t *testing.T) {
	f := newAuthFixture(t, true)

	for i := 0; i < 3; i++ {
		_, err := login(f, "9999")
		require.ErrorIs(t, err, models.ErrInvalidPIN)
	}

	select {
	case alert := <-f.notifier.alerts:
		assert.Equal(t, AlertBruteForce, alert.Kind)
		assert.Equal(t, 3, alert.Attempts)
	case <-time.After(time.Second):
		t.Fatal("expected brute force alert")
	}

	f.clock.Advance(time.Minute)
	_, err := login(f, testPIN)
	assert.ErrorIs(t, err, models.ErrBruteForceBlocked)
	assert.Equal(t, 4*time.Minute, models.RetryAfter(err))

	// Once the window lapses the correct PIN works again
	f.clock.Advance(4*time.Minute + time.Second)
	_, err = login(f, testPIN)
	assert.NoError(t, err)
}

func TestLogin_SuccessClearsFailures(t *testing.T) {
	f := newAuthFixture(t, true)

	_, _ = login(f, "9999")
	_, _ = login(f, "9999")
	_, err := login(f, testPIN)
	require.NoError(t, err)

	_, _ = login(f, "9999")
	_, _ = login(f, "9999")
	assert.False(t, f.state.BruteForce.IsSuspect(clientIP))
}

func TestLogin_SecondLoginFromSameIPIsNotNewDevice(t *testing.T) {
	f := newAuthFixture(t, true)

	first, err := login(f, testPIN)
	require.NoError(t, err)
	require.NoError(t, f.service.Logout(context.Background(), first.SessionID, clientIP))

	second, err := login(f, testPIN)
	require.NoError(t, err)
	assert.False(t, second.IsNewDevice)
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	first, err := login(f, testPIN)
	require.NoError(t, err)

	second, err := f.service.Login(ctx, LoginRequest{PIN: testPIN, IP: clientIP, PreviousSessionID: first.SessionID})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	_, err = f.service.Authenticate(ctx, first.SessionID, clientIP)
	assert.ErrorIs(t, err, models.ErrAuthRequired)
	assert.Equal(t, 1, f.state.Sessions.Count())
}

func TestAuthenticate_InactivityExpiry(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	res, err := login(f, testPIN)
	require.NoError(t, err)

	f.clock.Advance(14 * time.Minute)
	_, err = f.service.Authenticate(ctx, res.SessionID, clientIP)
	require.NoError(t, err)

	f.clock.Advance(15*time.Minute + time.Second)
	_, err = f.service.Authenticate(ctx, res.SessionID, clientIP)
	assert.ErrorIs(t, err, models.ErrSessionExpired)
	assert.Equal(t, 0, f.state.Sessions.Count())
}

func TestStatus(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	status := f.service.Status(ctx, "", clientIP)
	assert.False(t, status.Authenticated)
	assert.True(t, status.AuthEnabled)
	assert.Nil(t, status.SessionAge)

	res, err := login(f, testPIN)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Second)

	status = f.service.Status(ctx, res.SessionID, clientIP)
	assert.True(t, status.Authenticated)
	require.NotNil(t, status.SessionAge)
	assert.Equal(t, int64(2000), *status.SessionAge)

	require.NoError(t, f.service.Logout(ctx, res.SessionID, clientIP))
	assert.False(t, f.service.Status(ctx, res.SessionID, clientIP).Authenticated)

	// Logout is idempotent
	assert.NoError(t, f.service.Logout(ctx, res.SessionID, clientIP))
}

func TestLogin_ConcurrentWrongPINsStillBlock(t *testing.T) {
	f := newAuthFixture(t, true)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = login(f, "0000")
		}()
	}
	wg.Wait()

	assert.True(t, f.state.BruteForce.IsSuspect(clientIP))
	_, err := login(f, testPIN)
	assert.ErrorIs(t, err, models.ErrBruteForceBlocked)
}

func TestStatus_ExpiredSessionIsAudited(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	res, err := login(f, testPIN)
	require.NoError(t, err)

	f.clock.Advance(15*time.Minute + time.Second)
	assert.False(t, f.service.Status(ctx, res.SessionID, clientIP).Authenticated)
	assert.Equal(t, 0, f.state.Sessions.Count())

	line := auditLine(t, f.audit.String(), "session_expired")
	assert.Contains(t, line, `"ip_address":"`+clientIP+`"`)
}

func TestSweep_AuditsExpiredSessions(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	_, err := login(f, testPIN)
	require.NoError(t, err)

	assert.Equal(t, 0, f.service.Sweep(ctx).Sessions)
	assert.NotContains(t, f.audit.String(), "session_expired")

	f.clock.Advance(16 * time.Minute)
	stats := f.service.Sweep(ctx)
	assert.Equal(t, 1, stats.Sessions)
	require.Len(t, stats.Expired, 1)
	assert.Equal(t, clientIP, stats.Expired[0].OriginIP)

	line := auditLine(t, f.audit.String(), "session_expired")
	assert.Contains(t, line, `"ip_address":"`+clientIP+`"`)
	assert.Contains(t, line, `"failure_reason":"swept"`)
}

func TestStatus_AuthDisabled(t *testing.T) {
	f := newAuthFixture(t, false)

	status := f.service.Status(context.Background(), "", clientIP)
	assert.True(t, status.Authenticated)
	assert.False(t, status.AuthEnabled)
	assert.False(t, f.service.AuthEnabled())
}

func TestHistory_NewestFirst(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	for _, ip := range []string{"192.0.2.1", "192.0.2.2", "192.0.2.3"} {
		_, err := f.service.Login(ctx, LoginRequest{PIN: testPIN, IP: ip})
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}

	entries, total := f.service.History(ctx, 2)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 2)
	assert.Equal(t, "192.0.2.3", entries[0].IP)
	assert.Equal(t, "192.0.2.2", entries[1].IP)
	assert.Greater(t, entries[0].Timestamp, entries[1].Timestamp)
}
