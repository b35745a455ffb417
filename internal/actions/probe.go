package actions

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os/exec"
	"runtime"
	"strings"

	"github.com/BradenHooton/wakeguard/internal/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateTarget checks that addr is a dotted-quad IPv4 literal with every
// octet in [0,255]. IPv6, IPv4-mapped IPv6, zones and leading zeros are rejected.
func ValidateTarget(addr string) (netip.Addr, error) {
	if addr == "" {
		return netip.Addr{}, models.ErrTargetNotConfigured
	}
	if err := validate.Var(addr, "ipv4"); err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %q", models.ErrInvalidTarget, addr)
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil || !ip.Is4() || strings.Count(addr, ".") != 3 {
		return netip.Addr{}, fmt.Errorf("%w: %q", models.ErrInvalidTarget, addr)
	}
	return ip, nil
}

// Prober reports whether a host answers a reachability probe
type Prober interface {
	Probe(ctx context.Context, ip netip.Addr) (bool, error)
}

// PingProber sends a single ICMP echo through the system ping binary
type PingProber struct {
	runner Runner
	goos   string
}

// NewPingProber creates a Prober that shells out (without a shell) to ping
func NewPingProber(runner Runner) *PingProber {
	return &PingProber{runner: runner, goos: runtime.GOOS}
}

// Probe returns true when ping exits zero. A non-zero exit is a normal
// "offline" answer; only a failure to run ping at all is an error.
func (p *PingProber) Probe(ctx context.Context, ip netip.Addr) (bool, error) {
	_, err := p.runner.Run(ctx, "ping", pingArgs(p.goos, ip)...)
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	if ctx.Err() != nil {
		// Timed out waiting for a reply
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", models.ErrActionFailed, err)
}

func pingArgs(goos string, ip netip.Addr) []string {
	if goos == "windows" {
		return []string{"-n", "1", "-w", "1000", ip.String()}
	}
	return []string{"-c", "1", "-W", "1", ip.String()}
}
