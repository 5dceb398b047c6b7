// Package notify sends post-signing notifications to agency staff:
// email through SES, SMS through SNS. Notification failures are
// reported but never undo the filing that triggered them.
package notify

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"bondpacket/internal/common/config"
	"bondpacket/internal/common/errors"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/models"
)

// SESService abstracts the SES client for testing.
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSService abstracts the SNS client for testing.
type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Notifier struct {
	cfg config.NotificationConfig
	ses SESService
	sns SNSService
	log logger.Logger
}

func New(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, ses: sesClient, sns: snsClient, log: log}
}

// Event is one notification-worthy signing occurrence.
type Event struct {
	CaseNumber string
	DocName    string
	SignerRole string
	State      models.TrackerState
	FileURL    string
}

const signedEmailTemplate = `A bond packet document has been signed.

Case:     {{caseNumber}}
Document: {{docName}}
Signer:   {{signerRole}}
Status:   {{state}}
Filed at: {{fileUrl}}
`

// NotifySigned tells the agency a document reached a new signing state.
// Disabled channels are skipped silently; an enabled channel that fails
// returns an error the caller may log and drop.
func (n *Notifier) NotifySigned(ctx context.Context, ev Event) error {
	if n.cfg.Email.Enabled {
		if err := n.sendEmail(ctx, ev); err != nil {
			return err
		}
	}
	if n.cfg.SMS.Enabled {
		if err := n.sendSMS(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) sendEmail(ctx context.Context, ev Event) error {
	body := renderTemplate(signedEmailTemplate, map[string]string{
		"caseNumber": ev.CaseNumber,
		"docName":    ev.DocName,
		"signerRole": ev.SignerRole,
		"state":      string(ev.State),
		"fileUrl":    ev.FileURL,
	})
	subject := "Bond packet update: " + ev.CaseNumber + " " + string(ev.State)

	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.cfg.Email.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.cfg.Email.AgentEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("email", err)
	}
	n.log.Info("notification email sent", map[string]interface{}{
		"caseNumber": ev.CaseNumber,
		"docName":    ev.DocName,
	})
	return nil
}

func (n *Notifier) sendSMS(ctx context.Context, ev Event) error {
	msg := "Bond packet " + ev.CaseNumber + ": " + ev.DocName + " is " + string(ev.State)

	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		Message:     aws.String(msg),
		PhoneNumber: aws.String(n.cfg.SMS.AgentPhone),
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("sms", err)
	}
	return nil
}

// renderTemplate substitutes {{key}} placeholders.
func renderTemplate(tmpl string, vars map[string]string) string {
	out := tmpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}
