package invoice

import (
	"time"

	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents the invoice domain model
type Invoice struct {
	ID          string              `json:"id"`
	InvoiceNo   string              `json:"invoice_no"`
	InvoiceBase string              `json:"invoice_base"`
	ClientID    string              `json:"client_id"`
	SubEntityID string              `json:"sub_entity_id"`
	LineItems   []LineItem          `json:"line_items"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	TaxRate     decimal.Decimal     `json:"tax_rate"`
	TaxAmount   decimal.Decimal     `json:"tax_amount"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	InvoiceDate time.Time           `json:"invoice_date"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	PDFURL      string              `json:"pdf_url"`
	PDFPath     string              `json:"pdf_path"`
	Status      types.InvoiceStatus `json:"status"`
	types.BaseModel
}

// TransitionTo moves the invoice to the target status. Only pending invoices
// can be settled or cancelled; setting the current status again is a no-op.
func (i *Invoice) TransitionTo(target types.InvoiceStatus) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if i.Status == target {
		return nil
	}
	if i.Status != types.InvoiceStatusPending {
		return ierr.NewErrorf("invoice %s is %s", i.InvoiceNo, i.Status).
			WithHintf("A %s invoice cannot be marked %s", i.Status, target).
			WithReportableDetails(map[string]any{
				"invoice_id": i.ID,
				"from":       i.Status,
				"to":         target,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	i.Status = target
	return nil
}
