package email

import (
	"context"
	"time"

	"github.com/agencyops/agencyops/internal/config"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/resend/resend-go/v2"
)

// EmailClient represents an email client wrapper
type EmailClient struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
	replyTo     string
}

// Attachment is a file sent along with a message
type Attachment struct {
	Filename string
	Content  []byte
}

// NewEmailClient creates a new email client. Requests to the provider are
// retried on transient failures.
func NewEmailClient(cfg *config.Configuration) *EmailClient {
	if !cfg.Email.Enabled || cfg.Email.APIKey == "" {
		return &EmailClient{
			enabled: false,
		}
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil

	return &EmailClient{
		client:      resend.NewCustomClient(rc.StandardClient(), cfg.Email.APIKey),
		enabled:     true,
		fromAddress: cfg.Email.FromAddress,
		replyTo:     cfg.Email.ReplyTo,
	}
}

// IsEnabled returns whether the email client is enabled
func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

// GetFromAddress returns the default from address
func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}

// SendEmail sends an HTML email with optional attachments
func (c *EmailClient) SendEmail(ctx context.Context, from, to, subject, htmlContent, textContent string, attachments ...Attachment) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("email client is disabled").
			Mark(ierr.ErrInvalidOperation)
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlContent,
		Text:    textContent,
	}

	if c.replyTo != "" {
		params.ReplyTo = c.replyTo
	}

	for _, a := range attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("failed to send email").
			Mark(ierr.ErrHTTPClient)
	}

	return sent.Id, nil
}
