package email

import (
	"context"
	"testing"

	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailClient_DisabledWithoutKey(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Email.Enabled = true
	cfg.Email.APIKey = ""

	assert.False(t, NewEmailClient(cfg).IsEnabled())
}

func TestNewEmailClient_Enabled(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Email.Enabled = true
	cfg.Email.APIKey = "re_test"
	cfg.Email.FromAddress = "billing@example.com"

	c := NewEmailClient(cfg)
	assert.True(t, c.IsEnabled())
	assert.Equal(t, "billing@example.com", c.GetFromAddress())
}

func TestSendInvoice_DisabledIsNotAnError(t *testing.T) {
	cfg := config.GetDefaultConfig()
	mailer := NewEmail(NewEmailClient(cfg), cfg, logger.NewNoopLogger())

	resp, err := mailer.SendInvoice(context.Background(), InvoiceMail{
		ToAddress: "client@example.com",
		InvoiceNo: "AGH-001",
	})

	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestSendEmail_DisabledClient(t *testing.T) {
	c := NewEmailClient(config.GetDefaultConfig())
	_, err := c.SendEmail(context.Background(), "a@example.com", "b@example.com", "s", "<p>x</p>", "")
	assert.Error(t, err)
}
