package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Security alert kinds
const (
	AlertBruteForce = "brute_force_block"
	AlertNewDevice  = "new_device_login"
)

// SecurityAlert describes an event worth telling the owner about
type SecurityAlert struct {
	Kind      string
	IP        string
	UserAgent string
	Attempts  int
	At        time.Time
}

// AlertNotifier delivers security alerts
type AlertNotifier interface {
	SendSecurityAlert(ctx context.Context, alert SecurityAlert) error
}

// sesSender is the subset of the SES client used here
type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// AWSSESAlertNotifier emails alerts using AWS SES
type AWSSESAlertNotifier struct {
	client      sesSender
	fromAddress string
	toAddress   string
	logger      *slog.Logger
}

// NewAWSSESAlertNotifier creates a notifier using the default AWS credential chain
func NewAWSSESAlertNotifier(ctx context.Context, region, fromAddress, toAddress string, logger *slog.Logger) (*AWSSESAlertNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESAlertNotifier{
		client:      ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		toAddress:   toAddress,
		logger:      logger,
	}, nil
}

// SendSecurityAlert emails a plain-text alert
func (s *AWSSESAlertNotifier) SendSecurityAlert(ctx context.Context, alert SecurityAlert) error {
	subject, body := renderAlert(alert)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send security alert via SES",
			slog.String("kind", alert.Kind),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("security alert sent",
		slog.String("kind", alert.Kind),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}

// LogAlertNotifier writes alerts to the log when email is not configured
type LogAlertNotifier struct {
	logger *slog.Logger
}

// NewLogAlertNotifier creates a log-only notifier
func NewLogAlertNotifier(logger *slog.Logger) *LogAlertNotifier {
	return &LogAlertNotifier{logger: logger}
}

func (n *LogAlertNotifier) SendSecurityAlert(ctx context.Context, alert SecurityAlert) error {
	n.logger.Warn("security alert",
		slog.String("kind", alert.Kind),
		slog.String("ip_address", alert.IP),
		slog.Int("attempts", alert.Attempts))
	return nil
}

func renderAlert(alert SecurityAlert) (string, string) {
	var subject string
	var b strings.Builder

	switch alert.Kind {
	case AlertBruteForce:
		subject = "Login blocked after repeated failed PIN attempts"
		fmt.Fprintf(&b, "%d failed PIN attempts were made from %s.\n", alert.Attempts, alert.IP)
		b.WriteString("Further logins from this address are blocked until the window expires.\n")
	case AlertNewDevice:
		subject = "Login from a new device"
		fmt.Fprintf(&b, "A successful login was made from %s, which has not signed in recently.\n", alert.IP)
	default:
		subject = "Security alert"
		fmt.Fprintf(&b, "Event %s from %s.\n", alert.Kind, alert.IP)
	}

	if alert.UserAgent != "" {
		fmt.Fprintf(&b, "User agent: %s\n", alert.UserAgent)
	}
	fmt.Fprintf(&b, "Time: %s\n", alert.At.UTC().Format(time.RFC3339))
	b.WriteString("\nIf this was not you, change the PIN and restart the service.\n")

	return subject, b.String()
}
