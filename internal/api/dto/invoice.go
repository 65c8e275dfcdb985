package dto

import (
	"context"
	"time"

	"github.com/agencyops/agencyops/internal/domain/invoice"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/agencyops/agencyops/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Per-line bounds keep any invoice total well inside what AmountInWords spells
var (
	MaxLineQuantity = decimal.New(1, 6)
	MaxLineRate     = decimal.New(1, 9)
)

// InvoiceLineItemRequest is one billed service. Quantity and rate may be sent
// as numbers or strings.
type InvoiceLineItemRequest struct {
	Title       string       `json:"title" validate:"max=500"`
	Description string       `json:"description" validate:"max=5000"`
	Quantity    LooseDecimal `json:"quantity"`
	Rate        LooseDecimal `json:"rate"`
}

// GenerateInvoiceRequest asks for a new numbered, rendered invoice
type GenerateInvoiceRequest struct {
	// ClientID is the client's id, client code or email
	ClientID    string                   `json:"client_id" validate:"required"`
	SubEntityID string                   `json:"sub_entity_id" validate:"required"`
	LineItems   []InvoiceLineItemRequest `json:"line_items" validate:"required,min=1,max=100,dive"`
	IncludeTax  *bool                    `json:"include_tax,omitempty"`
	InvoiceDate *time.Time               `json:"invoice_date,omitempty"`
	DueDate     *time.Time               `json:"due_date,omitempty"`
	Notes       string                   `json:"notes,omitempty" validate:"max=2000"`
	SendEmail   *bool                    `json:"send_email,omitempty"`
}

func (r *GenerateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	for i, item := range r.LineItems {
		if item.Quantity.IsNegative() || item.Rate.IsNegative() {
			return ierr.NewError("negative quantity or rate").
				WithHint("Quantity and rate must not be negative").
				WithReportableDetails(map[string]any{
					"line_item": i,
				}).
				Mark(ierr.ErrValidation)
		}
		if item.Quantity.GreaterThan(MaxLineQuantity) || item.Rate.GreaterThan(MaxLineRate) {
			return ierr.NewError("quantity or rate out of range").
				WithHintf("Quantity must not exceed %s and rate must not exceed %s", MaxLineQuantity.String(), MaxLineRate.String()).
				WithReportableDetails(map[string]any{
					"line_item": i,
				}).
				Mark(ierr.ErrValidation)
		}
	}
	if r.DueDate != nil && r.InvoiceDate != nil && r.DueDate.Before(*r.InvoiceDate) {
		return ierr.NewError("due date before invoice date").
			WithHint("Due date must not be before the invoice date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IncludesTax defaults to true
func (r *GenerateInvoiceRequest) IncludesTax() bool {
	return lo.FromPtrOr(r.IncludeTax, true)
}

// ShouldEmail defaults to true
func (r *GenerateInvoiceRequest) ShouldEmail() bool {
	return lo.FromPtrOr(r.SendEmail, true)
}

// NormalizedLineItems applies the title and description fallbacks and
// computes line amounts
func (r *GenerateInvoiceRequest) NormalizedLineItems() []invoice.LineItem {
	return lo.Map(r.LineItems, func(item InvoiceLineItemRequest, _ int) invoice.LineItem {
		return invoice.NormalizeLineItem(item.Title, item.Description, item.Quantity.Decimal, item.Rate.Decimal)
	})
}

// ToInvoice builds the record for one allocation attempt
func (r *GenerateInvoiceRequest) ToInvoice(ctx context.Context, clientID, subEntityID string, items []invoice.LineItem, totals invoice.Totals, number *invoice.InvoiceNumber) *invoice.Invoice {
	invoiceDate := time.Now().UTC()
	if r.InvoiceDate != nil {
		invoiceDate = r.InvoiceDate.UTC()
	}

	return &invoice.Invoice{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNo:   number.InvoiceNo,
		InvoiceBase: number.InvoiceBase,
		ClientID:    clientID,
		SubEntityID: subEntityID,
		LineItems:   items,
		Subtotal:    totals.Subtotal,
		TaxRate:     totals.TaxRate,
		TaxAmount:   totals.TaxAmount,
		TotalAmount: totals.TotalAmount,
		InvoiceDate: invoiceDate,
		DueDate:     r.DueDate,
		Notes:       r.Notes,
		Status:      types.InvoiceStatusPending,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

// GenerateInvoiceResponse is returned with 201 on success
type GenerateInvoiceResponse struct {
	InvoiceID string `json:"invoice_id"`
	InvoiceNo string `json:"invoice_no"`
	PDFURL    string `json:"pdf_url"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse represents the response for listing invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]

// UpdateInvoiceStatusRequest settles or cancels a pending invoice
type UpdateInvoiceStatusRequest struct {
	Status types.InvoiceStatus `json:"status" validate:"required"`
}

func (r *UpdateInvoiceStatusRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Status.Validate()
}
