package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpacket/internal/common/config"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/models"
)

type mockSES struct {
	sendEmailFunc func(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.sendEmailFunc(ctx, input, optFns...)
}

type mockSNS struct {
	publishFunc func(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.publishFunc(ctx, input, optFns...)
}

func emailConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "noreply@example.com"
	cfg.Email.AgentEmail = "agent@example.com"
	return cfg
}

func testEvent() Event {
	return Event{
		CaseNumber: "24-001",
		DocName:    "Shamrock_master-waiver_signer2_24-001",
		SignerRole: "Defendant",
		State:      models.StateSigned,
		FileURL:    "gs://bucket/DoeJoh20250314/doc.pdf",
	}
}

func TestNotifySigned_Email(t *testing.T) {
	var captured *ses.SendEmailInput
	sesMock := &mockSES{
		sendEmailFunc: func(_ context.Context, input *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = input
			return &ses.SendEmailOutput{}, nil
		},
	}

	n := New(emailConfig(), sesMock, nil, logger.NewNoOpLogger())
	require.NoError(t, n.NotifySigned(context.Background(), testEvent()))

	require.NotNil(t, captured)
	assert.Equal(t, "noreply@example.com", *captured.Source)
	assert.Equal(t, []string{"agent@example.com"}, captured.Destination.ToAddresses)
	assert.Contains(t, *captured.Message.Subject.Data, "24-001")
	body := *captured.Message.Body.Text.Data
	assert.Contains(t, body, "Shamrock_master-waiver_signer2_24-001")
	assert.Contains(t, body, "SIGNED")
	assert.Contains(t, body, "gs://bucket/DoeJoh20250314/doc.pdf")
	assert.NotContains(t, body, "{{", "all placeholders substituted")
}

func TestNotifySigned_EmailFailure(t *testing.T) {
	sesMock := &mockSES{
		sendEmailFunc: func(_ context.Context, _ *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	n := New(emailConfig(), sesMock, nil, logger.NewNoOpLogger())
	err := n.NotifySigned(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTIFICATION_SEND_FAILED")
}

func TestNotifySigned_SMS(t *testing.T) {
	var captured *sns.PublishInput
	snsMock := &mockSNS{
		publishFunc: func(_ context.Context, input *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = input
			return &sns.PublishOutput{}, nil
		},
	}

	var cfg config.NotificationConfig
	cfg.SMS.Enabled = true
	cfg.SMS.AgentPhone = "+15555550199"

	n := New(cfg, nil, snsMock, logger.NewNoOpLogger())
	require.NoError(t, n.NotifySigned(context.Background(), testEvent()))

	require.NotNil(t, captured)
	assert.Equal(t, "+15555550199", *captured.PhoneNumber)
	assert.Contains(t, *captured.Message, "24-001")
}

func TestNotifySigned_AllChannelsDisabled(t *testing.T) {
	n := New(config.NotificationConfig{}, nil, nil, logger.NewNoOpLogger())
	assert.NoError(t, n.NotifySigned(context.Background(), testEvent()), "disabled channels are never invoked")
}

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("case {{caseNumber}} is {{state}}", map[string]string{
		"caseNumber": "24-001",
		"state":      "SIGNED",
	})
	assert.Equal(t, "case 24-001 is SIGNED", out)
}
