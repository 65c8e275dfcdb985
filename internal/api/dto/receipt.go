package dto

import (
	"context"
	"time"

	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/receipt"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/agencyops/agencyops/internal/validator"
	"github.com/shopspring/decimal"
)

// GenerateReceiptRequest records a payment against an invoice
type GenerateReceiptRequest struct {
	InvoiceNo string `json:"invoice_no" validate:"required"`
	// Amount defaults to the invoice total
	Amount        *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,decimal_gte0,decimal_lte=1000000000000000"`
	PaymentType   string           `json:"payment_type,omitempty"`
	ChequeOrTxnNo string           `json:"cheque_or_txn_no,omitempty" validate:"max=100"`
	Notes         string           `json:"notes,omitempty" validate:"max=2000"`
	ReceiptDate   *time.Time       `json:"receipt_date,omitempty"`
}

func (r *GenerateReceiptRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	_, err := types.NormalizePaymentType(r.PaymentType)
	return err
}

// AmountFor returns the paid amount rounded to paise
func (r *GenerateReceiptRequest) AmountFor(inv *invoice.Invoice) decimal.Decimal {
	if r.Amount != nil {
		return r.Amount.Round(2)
	}
	return inv.TotalAmount.Round(2)
}

// ToReceipt builds the record for one allocation attempt
func (r *GenerateReceiptRequest) ToReceipt(ctx context.Context, inv *invoice.Invoice, seq int64, receiptNo string, amount decimal.Decimal, words string) *receipt.Receipt {
	paymentType, _ := types.NormalizePaymentType(r.PaymentType)
	receiptDate := time.Now().UTC()
	if r.ReceiptDate != nil {
		receiptDate = r.ReceiptDate.UTC()
	}

	return &receipt.Receipt{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECEIPT),
		Seq:           seq,
		ReceiptNo:     receiptNo,
		ReceiptDate:   receiptDate,
		ClientID:      inv.ClientID,
		InvoiceID:     inv.ID,
		InvoiceNo:     inv.InvoiceNo,
		Amount:        amount,
		AmountInWords: words,
		PaymentType:   paymentType,
		ChequeOrTxnNo: r.ChequeOrTxnNo,
		Notes:         r.Notes,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

type GenerateReceiptResponse struct {
	ReceiptID string `json:"receipt_id"`
	ReceiptNo string `json:"receipt_no"`
	PDFURL    string `json:"pdf_url"`
}

type ReceiptResponse struct {
	*receipt.Receipt
}

func NewReceiptResponse(r *receipt.Receipt) *ReceiptResponse {
	return &ReceiptResponse{Receipt: r}
}

type ListReceiptsResponse = types.ListResponse[*ReceiptResponse]
