package services

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/BradenHooton/wakeguard/internal/actions"
	"github.com/BradenHooton/wakeguard/internal/models"
	pkglogger "github.com/BradenHooton/wakeguard/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	calls []string
	res   actions.Result
	err   error
	block bool
}

func (r *stubRunner) Run(ctx context.Context, path string, args ...string) (actions.Result, error) {
	r.calls = append(r.calls, path)
	if r.block {
		<-ctx.Done()
		return actions.Result{}, ctx.Err()
	}
	return r.res, r.err
}

type stubProber struct {
	online bool
	err    error
	probed []netip.Addr
}

func (p *stubProber) Probe(ctx context.Context, ip netip.Addr) (bool, error) {
	p.probed = append(p.probed, ip)
	return p.online, p.err
}

func newWakeService(action actions.Name, target string, runner actions.Runner, prober actions.Prober) *WakeService {
	logger := testLogger()
	return NewWakeService(action, target, 50*time.Millisecond, runner, prober, logger, pkglogger.NewAuditLogger(logger))
}

func TestWake_RunsAllowlistedExecutable(t *testing.T) {
	runner := &stubRunner{}
	svc := newWakeService(actions.WakePC, "", runner, &stubProber{})

	res, err := svc.Wake(context.Background(), "sid", clientIP)
	require.NoError(t, err)
	assert.False(t, res.Timestamp.IsZero())

	cmd, _ := actions.Resolve(actions.WakePC)
	assert.Equal(t, []string{cmd.Path}, runner.calls)
}

func TestWake_UnknownActionNeverExecutes(t *testing.T) {
	runner := &stubRunner{}
	svc := newWakeService(actions.Name("rm -rf /"), "", runner, &stubProber{})

	_, err := svc.Wake(context.Background(), "sid", clientIP)
	assert.ErrorIs(t, err, models.ErrConfiguration)
	assert.Empty(t, runner.calls)
}

func TestWake_NonZeroExitIsActionFailure(t *testing.T) {
	runner := &stubRunner{
		res: actions.Result{Stderr: "permission denied", ExitCode: 1},
		err: errors.New("exit status 1"),
	}
	svc := newWakeService(actions.WakePC, "", runner, &stubProber{})

	_, err := svc.Wake(context.Background(), "sid", clientIP)
	assert.ErrorIs(t, err, models.ErrActionFailed)
	assert.NotContains(t, err.Error(), "permission denied")
}

func TestWake_Timeout(t *testing.T) {
	svc := newWakeService(actions.WakePC, "", &stubRunner{block: true}, &stubProber{})

	start := time.Now()
	_, err := svc.Wake(context.Background(), "sid", clientIP)
	assert.ErrorIs(t, err, models.ErrActionFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStatus_ValidatesTarget(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantErr error
	}{
		{"octet out of range", "999.1.1.1", models.ErrInvalidTarget},
		{"too few octets", "1.2.3", models.ErrInvalidTarget},
		{"hostname", "example.com", models.ErrInvalidTarget},
		{"unset", "", models.ErrTargetNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := &stubProber{}
			svc := newWakeService(actions.WakePC, tt.target, &stubRunner{}, prober)

			_, err := svc.Status(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, prober.probed)
		})
	}
}

func TestStatus_ProbesValidTarget(t *testing.T) {
	prober := &stubProber{online: true}
	svc := newWakeService(actions.WakePC, "192.168.1.50", &stubRunner{}, prober)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Online)
	assert.Equal(t, "192.168.1.50", status.IP)
	require.Len(t, prober.probed, 1)
	assert.Equal(t, netip.MustParseAddr("192.168.1.50"), prober.probed[0])
}

func TestStatus_ProbeErrorIsActionFailure(t *testing.T) {
	prober := &stubProber{err: errors.New("ping: not found")}
	svc := newWakeService(actions.WakePC, "192.168.1.50", &stubRunner{}, prober)

	_, err := svc.Status(context.Background())
	assert.ErrorIs(t, err, models.ErrActionFailed)
}
