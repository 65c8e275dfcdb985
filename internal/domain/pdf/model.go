package pdf

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceData represents the data model for invoice PDF generation
type InvoiceData struct {
	InvoiceNo   string          `json:"invoice_no"`
	ClientCode  string          `json:"client_code"`
	InvoiceDate CustomTime      `json:"invoice_date"`
	DueDate     *CustomTime     `json:"due_date,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       string          `json:"notes,omitempty"`

	Biller    *BillerInfo    `json:"biller"`
	Recipient *RecipientInfo `json:"recipient"`

	LineItems []LineItemData `json:"line_items"`
}

// ReceiptData represents the data model for receipt PDF generation
type ReceiptData struct {
	ReceiptNo     string          `json:"receipt_no"`
	ClientCode    string          `json:"client_code"`
	ReceiptDate   CustomTime      `json:"receipt_date"`
	InvoiceNo     string          `json:"invoice_no"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentType   string          `json:"payment_type"`
	ChequeOrTxnNo string          `json:"cheque_or_txn_no,omitempty"`
	Notes         string          `json:"notes,omitempty"`

	Biller    *BillerInfo    `json:"biller"`
	Recipient *RecipientInfo `json:"recipient"`
}

// BillerInfo contains the issuing sub-entity's letterhead
type BillerInfo struct {
	Name                string   `json:"name"`
	Tagline             string   `json:"tagline,omitempty"`
	LogoPath            string   `json:"logo_path,omitempty"`
	AddressLine1        string   `json:"address_line1,omitempty"`
	AddressLine2        string   `json:"address_line2,omitempty"`
	ContactEmail        string   `json:"contact_email,omitempty"`
	TaxNumber           string   `json:"tax_number,omitempty"`
	AuthorisedSignatory string   `json:"authorised_signatory,omitempty"`
	Bank                BankInfo `json:"bank"`
}

type BankInfo struct {
	BankName      string `json:"bank_name,omitempty"`
	AccountHolder string `json:"account_holder,omitempty"`
	AccountType   string `json:"account_type,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IFSCCode      string `json:"ifsc_code,omitempty"`
	UPIID         string `json:"upi_id,omitempty"`
}

// RecipientInfo contains the billed client's details
type RecipientInfo struct {
	Name         string `json:"name"`
	BusinessName string `json:"business_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
}

// LineItemData represents an invoice line item for PDF generation
type LineItemData struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type CustomTime struct {
	time.Time
}

func (ct CustomTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.Format("2006-01-02")) // Format to YYYY-MM-DD
}

// Display formats the date the way it is printed on documents
func (ct CustomTime) Display() string {
	if ct.IsZero() {
		return "-"
	}
	return ct.Format("02/01/2006")
}
