package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"pantrypal/internal/config"
	"pantrypal/internal/models"
)

// EmailService sends transactional email through Amazon SES. Sending is
// disabled when no from-address is configured; every send then becomes a
// logged no-op so local development works without AWS credentials.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates an email service from configuration
func NewEmailService(cfg *config.Config) (*EmailService, error) {
	if cfg.FromEmail == "" {
		log.Println("Email sending disabled: SES_FROM_EMAIL not set")
		return &EmailService{enabled: false}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &EmailService{
		client:     sesv2.NewFromConfig(awsCfg),
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		appBaseURL: cfg.AppBaseURL,
		enabled:    true,
	}, nil
}

// SendInvitationEmail emails the invitee about a household invitation
func (s *EmailService) SendInvitationEmail(inv *models.Invitation) error {
	subject := fmt.Sprintf("You've been invited to join %s on PantryPal", inv.HouseholdName)

	link := fmt.Sprintf("%s/invitations", s.appBaseURL)
	expires := inv.ExpiresAt.Format("January 2, 2006")

	htmlBody := fmt.Sprintf(`
<html>
<body style="font-family: sans-serif; color: #333;">
  <h2>You're invited!</h2>
  <p>%s has invited you to join the household <strong>%s</strong> on PantryPal as a %s.</p>
  <p><a href="%s" style="display: inline-block; padding: 10px 20px; background: #2d7a4f; color: #fff; text-decoration: none; border-radius: 4px;">View invitation</a></p>
  <p>This invitation expires on %s.</p>
  <p>If you weren't expecting this, you can safely ignore this email.</p>
</body>
</html>`, inv.InviterName, inv.HouseholdName, inv.Role, link, expires)

	textBody := fmt.Sprintf(
		"%s has invited you to join the household %q on PantryPal as a %s.\n\n"+
			"View the invitation: %s\n\n"+
			"This invitation expires on %s.\n\n"+
			"If you weren't expecting this, you can safely ignore this email.\n",
		inv.InviterName, inv.HouseholdName, inv.Role, link, expires)

	return s.send(inv.Email, subject, htmlBody, textBody)
}

func (s *EmailService) send(to, subject, htmlBody, textBody string) error {
	if !s.enabled {
		log.Printf("Email sending disabled, skipping email to %s: %s", to, subject)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data: aws.String(subject),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data: aws.String(htmlBody),
					},
					Text: &types.Content{
						Data: aws.String(textBody),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	return nil
}
