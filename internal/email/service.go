package email

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/agencyops/agencyops/internal/config"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
)

// Mailer delivers documents to clients
type Mailer interface {
	SendInvoice(ctx context.Context, mail InvoiceMail) (*SendEmailResponse, error)
}

// Email handles email operations
type Email struct {
	client           *EmailClient
	defaultRecipient string
	logger           *logger.Logger
}

// NewEmail creates a new email service
func NewEmail(client *EmailClient, cfg *config.Configuration, logger *logger.Logger) Mailer {
	return &Email{
		client:           client,
		defaultRecipient: cfg.Email.DefaultRecipient,
		logger:           logger,
	}
}

var invoiceMailTemplate = template.Must(template.New("invoice-mail").Parse(`<!doctype html>
<html>
<body style="font-family:Arial,Helvetica,sans-serif;background:#F5E6D3;margin:0;padding:24px;color:#111827;">
  <div style="max-width:640px;margin:0 auto;background:#fff;border-radius:12px;overflow:hidden;">
    <div style="background:linear-gradient(90deg,#B87333,#D1A574);color:#fff;padding:24px;text-align:center;">
      <h1 style="margin:0;font-size:20px;">Invoice {{.InvoiceNo}}</h1>
    </div>
    <div style="padding:20px 24px;font-size:14px;line-height:1.5;">
      <p>Dear {{.ClientName}},</p>
      <p>Please find attached invoice <strong>{{.InvoiceNo}}</strong> for <strong>{{.TotalAmount}}</strong>{{with .DueDate}}, due on {{.}}{{end}}.</p>
      {{with .PublicURL}}<p>You can also download it here: <a href="{{.}}">{{.}}</a></p>{{end}}
      <p>Thank you for your business.</p>
    </div>
  </div>
</body>
</html>`))

// SendInvoice mails an invoice with its PDF attached. A disabled client or a
// missing recipient is not an error.
func (s *Email) SendInvoice(ctx context.Context, mail InvoiceMail) (*SendEmailResponse, error) {
	to := strings.TrimSpace(mail.ToAddress)
	if to == "" {
		to = s.defaultRecipient
	}

	if !s.client.IsEnabled() || to == "" {
		s.logger.Warnw("email client is disabled or recipient missing, skipping email send",
			"to", to,
			"invoice_no", mail.InvoiceNo,
		)
		return &SendEmailResponse{
			Success: false,
			Error:   "email not sent",
		}, nil
	}

	var body bytes.Buffer
	if err := invoiceMailTemplate.Execute(&body, mail); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to render invoice email").
			Mark(ierr.ErrSystem)
	}

	var attachments []Attachment
	if mail.FilePath != "" {
		content, err := os.ReadFile(mail.FilePath)
		if err != nil {
			s.logger.Warnw("invoice attachment unreadable, sending link only",
				"error", err,
				"path", mail.FilePath,
			)
		} else {
			attachments = append(attachments, Attachment{
				Filename: filepath.Base(mail.FilePath),
				Content:  content,
			})
		}
	}

	from := mail.From
	if from == "" {
		from = s.client.GetFromAddress()
	}

	messageID, err := s.client.SendEmail(ctx, from, to, "Invoice "+mail.InvoiceNo, body.String(), "", attachments...)
	if err != nil {
		s.logger.Errorw("failed to send invoice email",
			"error", err,
			"to", to,
			"invoice_no", mail.InvoiceNo,
		)
		return &SendEmailResponse{
			Success: false,
			Error:   err.Error(),
		}, err
	}

	s.logger.Infow("invoice email sent successfully",
		"message_id", messageID,
		"to", to,
		"invoice_no", mail.InvoiceNo,
	)

	return &SendEmailResponse{
		MessageID: messageID,
		Success:   true,
	}, nil
}
