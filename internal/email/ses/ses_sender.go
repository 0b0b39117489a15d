package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"polisave/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendAnalysisCompleted(ctx context.Context, toEmail, toName, documentName string) error {
	subject := fmt.Sprintf("Your offer analysis is ready: %s", documentName)
	docsURL := s.frontendURL + "/documents"
	htmlBody := buildCompletedHTML(toName, documentName, docsURL)
	textBody := fmt.Sprintf("Hi %s,\n\nThe analysis of %q finished. View the extracted offer at:\n%s\n\nPoliSave Team", toName, documentName, docsURL)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendAnalysisFailed(ctx context.Context, toEmail, toName, documentName, reason string) error {
	subject := fmt.Sprintf("Offer analysis failed: %s", documentName)
	docsURL := s.frontendURL + "/documents"
	htmlBody := buildFailedHTML(toName, documentName, reason, docsURL)
	textBody := fmt.Sprintf("Hi %s,\n\nThe analysis of %q failed: %s\n\nYou can retry from your documents page:\n%s\n\nPoliSave Team", toName, documentName, reason, docsURL)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildCompletedHTML(name, documentName, docsURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Analysis finished</h2>
  <p>Hi %s,</p>
  <p>The analysis of <strong>%s</strong> is done. The extracted offer is ready for comparison:</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View documents</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">PoliSave - Insurance Offer Comparison</p>
</body>
</html>`, html.EscapeString(name), html.EscapeString(documentName), docsURL)
}

func buildFailedHTML(name, documentName, reason, docsURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Analysis failed</h2>
  <p>Hi %s,</p>
  <p>The analysis of <strong>%s</strong> failed:</p>
  <p style="color: #b91c1c;">%s</p>
  <p>You can retry from your documents page:</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View documents</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">PoliSave - Insurance Offer Comparison</p>
</body>
</html>`, html.EscapeString(name), html.EscapeString(documentName), html.EscapeString(reason), docsURL)
}
