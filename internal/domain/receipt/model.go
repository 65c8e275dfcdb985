package receipt

import (
	"fmt"
	"time"

	"github.com/agencyops/agencyops/internal/types"
	"github.com/shopspring/decimal"
)

// Receipt acknowledges a payment against an invoice
type Receipt struct {
	ID            string            `json:"id"`
	Seq           int64             `json:"seq"`
	ReceiptNo     string            `json:"receipt_no"`
	ReceiptDate   time.Time         `json:"receipt_date"`
	ClientID      string            `json:"client_id"`
	InvoiceID     string            `json:"invoice_id"`
	InvoiceNo     string            `json:"invoice_no"`
	Amount        decimal.Decimal   `json:"amount"`
	AmountInWords string            `json:"amount_in_words"`
	PaymentType   types.PaymentType `json:"payment_type"`
	ChequeOrTxnNo string            `json:"cheque_or_txn_no,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	PDFURL        string            `json:"pdf_url"`
	PDFPath       string            `json:"pdf_path"`
	types.BaseModel
}

// FormatNumber renders a receipt number such as "RUD-007"
func FormatNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

// FileName is the on-disk name for a receipt document
func FileName(receiptNo string) string {
	return receiptNo + ".pdf"
}
