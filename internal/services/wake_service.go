package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/wakeguard/internal/actions"
	"github.com/BradenHooton/wakeguard/internal/models"
	pkglogger "github.com/BradenHooton/wakeguard/pkg/logger"
)

// WakeResult is returned after the wake signal was dispatched
type WakeResult struct {
	Timestamp time.Time
}

// TargetStatus is the outcome of one reachability probe
type TargetStatus struct {
	Online    bool
	IP        string
	Timestamp time.Time
}

// WakeService runs the allowlisted wake action and probes the target
type WakeService struct {
	action      actions.Name
	targetIP    string
	timeout     time.Duration
	runner      actions.Runner
	prober      actions.Prober
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewWakeService creates a WakeService. action is resolved against the
// allowlist on every call; targetIP is validated on every status check.
func NewWakeService(action actions.Name, targetIP string, timeout time.Duration, runner actions.Runner, prober actions.Prober, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *WakeService {
	return &WakeService{
		action:      action,
		targetIP:    targetIP,
		timeout:     timeout,
		runner:      runner,
		prober:      prober,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// TargetConfigured reports whether a status target address is set
func (s *WakeService) TargetConfigured() bool {
	return s.targetIP != ""
}

// Wake dispatches the wake signal. Success means the action exited zero,
// not that the target powered on.
func (s *WakeService) Wake(ctx context.Context, sessionID, ip string) (*WakeResult, error) {
	cmd, err := actions.Resolve(s.action)
	if err != nil {
		s.logger.Error("wake action is not allowlisted",
			slog.String("action", string(s.action)))
		s.auditWake(sessionID, ip, false, "unknown_action")
		return nil, fmt.Errorf("%w: %w", models.ErrConfiguration, err)
	}

	res, err := s.run(ctx, cmd)
	if err != nil {
		s.logger.Error("wake action failed",
			slog.String("action", string(s.action)),
			slog.Int("exit_code", res.ExitCode),
			slog.String("stderr", res.Stderr),
			slog.Any("error", err))
		s.auditWake(sessionID, ip, false, "action_failed")
		return nil, fmt.Errorf("%w: %w", models.ErrActionFailed, err)
	}

	s.logger.Debug("wake action output", slog.String("stdout", res.Stdout))
	s.auditWake(sessionID, ip, true, "")

	return &WakeResult{Timestamp: s.now()}, nil
}

// run executes cmd in its own goroutine bounded by the action timeout, so
// the caller waits only on this one unit of work
func (s *WakeService) run(ctx context.Context, cmd actions.Command) (actions.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type outcome struct {
		res actions.Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		res, err := s.runner.Run(ctx, cmd.Path, cmd.Args...)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		return actions.Result{ExitCode: -1}, fmt.Errorf("%s: %w", cmd.Path, ctx.Err())
	}
}

// Status probes the configured target. The address is validated as a strict
// IPv4 literal before any process is started.
func (s *WakeService) Status(ctx context.Context) (*TargetStatus, error) {
	ip, err := actions.ValidateTarget(s.targetIP)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	online, err := s.prober.Probe(ctx, ip)
	if err != nil {
		s.logger.Error("status probe failed",
			slog.String("target", ip.String()),
			slog.Any("error", err))
		if errors.Is(err, models.ErrActionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", models.ErrActionFailed, err)
	}

	return &TargetStatus{
		Online:    online,
		IP:        ip.String(),
		Timestamp: s.now(),
	}, nil
}

func (s *WakeService) auditWake(sessionID, ip string, success bool, reason string) {
	eventType := pkglogger.EventWake
	if !success {
		eventType = pkglogger.EventWakeFailed
	}
	s.auditLogger.LogAction(pkglogger.AuditEvent{
		EventType:     eventType,
		SessionID:     sessionID,
		IPAddress:     ip,
		Success:       success,
		FailureReason: reason,
		Metadata:      map[string]string{"action": string(s.action)},
	})
}
