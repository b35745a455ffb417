package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestAWSSESAlertNotifier_SendsPlainText(t *testing.T) {
	client := &fakeSES{}
	n := &AWSSESAlertNotifier{client: client, fromAddress: "alerts@example.com", toAddress: "owner@example.com", logger: testLogger()}

	err := n.SendSecurityAlert(context.Background(), SecurityAlert{
		Kind:     AlertBruteForce,
		IP:       "203.0.113.9",
		Attempts: 3,
		At:       time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "alerts@example.com", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"owner@example.com"}, client.input.Destination.ToAddresses)
	body := aws.ToString(client.input.Message.Body.Text.Data)
	assert.Contains(t, body, "3 failed PIN attempts")
	assert.Contains(t, body, "203.0.113.9")
	assert.Contains(t, body, "2026-06-01T09:00:00Z")
}

func TestAWSSESAlertNotifier_WrapsError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	n := &AWSSESAlertNotifier{client: client, fromAddress: "a@example.com", toAddress: "b@example.com", logger: testLogger()}

	err := n.SendSecurityAlert(context.Background(), SecurityAlert{Kind: AlertNewDevice})
	assert.ErrorContains(t, err, "throttled")
}

func TestRenderAlert_NewDevice(t *testing.T) {
	subject, body := renderAlert(SecurityAlert{Kind: AlertNewDevice, IP: "192.0.2.4", UserAgent: "curl/8"})

	assert.Equal(t, "Login from a new device", subject)
	assert.Contains(t, body, "192.0.2.4")
	assert.Contains(t, body, "User agent: curl/8")
}
