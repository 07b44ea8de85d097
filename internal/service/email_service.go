package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"

	"playtrack/internal/logging"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service whose sends are logged and skipped.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		logging.Log.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, appBaseURL: appBaseURL}, nil
	}

	logging.Log.WithFields(logrus.Fields{
		"region":     awsRegion,
		"from":       fromEmail,
		"fromName":   fromName,
		"appBaseURL": appBaseURL,
	}).Debug("Initializing email service with AWS SES")

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	logging.Log.WithFields(logrus.Fields{"from": fromEmail, "region": awsRegion}).Info("Email service enabled")

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendProgressSummary emails a child's radar summary to their guardian
func (s *EmailService) SendProgressSummary(ctx context.Context, toEmail, childName string, radar *Radar) error {
	if !s.enabled {
		logging.Log.WithField("to", toEmail).Info("Skipping email send (service disabled): progress summary")
		return nil
	}

	subject, htmlBody, textBody := progressSummaryBodies(childName, radar, s.appBaseURL)
	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// progressSummaryBodies renders the subject and both bodies of the summary email
func progressSummaryBodies(childName string, radar *Radar, appBaseURL string) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("%s's development summary", childName)
	link := fmt.Sprintf("%s/api/children/%s/radar", strings.TrimRight(appBaseURL, "/"), radar.ChildID)

	var rows, lines strings.Builder
	for _, c := range radar.Categories {
		title := c.Title
		if title == "" {
			title = string(c.Category)
		}
		fmt.Fprintf(&rows, "\t\t\t\t<tr><td>%s</td><td>%.2f</td></tr>\n", html.EscapeString(title), c.DevelopmentalAge)
		fmt.Fprintf(&lines, "- %s: %.2f months\n", title, c.DevelopmentalAge)
	}

	htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		td { padding: 4px 12px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Development summary</h1>
		</div>
		<div class="content">
			<p>%s is %.2f months old. Developmental age per category, in months:</p>
			<table>
%s			</table>
			<p><a href="%s">View the full chart</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from PlayTrack. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(childName), radar.BiologicalAge, rows.String(), link)

	textBody = fmt.Sprintf(`%s is %.2f months old. Developmental age per category, in months:

%s
Full chart: %s

---
This is an automated email from PlayTrack. Please do not reply.
`, childName, radar.BiologicalAge, lines.String(), link)

	return subject, htmlBody, textBody
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	entry := logging.Log.WithFields(logrus.Fields{"to": toEmail, "subject": subject})
	if result.MessageId != nil {
		entry = entry.WithField("messageId", *result.MessageId)
	}
	entry.Info("Email sent successfully")
	return nil
}
