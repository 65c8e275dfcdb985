package mongo

import (
	"time"

	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/receipt"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/shopspring/decimal"
)

// Money is stored as its decimal string so no precision is lost.

type counterModel struct {
	Name      string    `bson:"_id"`
	Value     int64     `bson:"value"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// ==================== Sub-entity ====================

type subEntityModel struct {
	ID                  string                `bson:"_id"`
	Name                string                `bson:"name"`
	Prefix              string                `bson:"prefix"`
	TaxRate             string                `bson:"tax_rate"`
	Tagline             string                `bson:"tagline,omitempty"`
	LogoPath            string                `bson:"logo_path,omitempty"`
	AddressLine1        string                `bson:"address_line1,omitempty"`
	AddressLine2        string                `bson:"address_line2,omitempty"`
	ContactEmail        string                `bson:"contact_email,omitempty"`
	TaxNumber           string                `bson:"tax_number,omitempty"`
	AuthorisedSignatory string                `bson:"authorised_signatory,omitempty"`
	BankDetails         subentity.BankDetails `bson:"bank_details"`
	types.BaseModel     `bson:",inline"`
}

func toSubEntityModel(s *subentity.SubEntity) *subEntityModel {
	return &subEntityModel{
		ID:                  s.ID,
		Name:                s.Name,
		Prefix:              s.Prefix,
		TaxRate:             s.TaxRate.String(),
		Tagline:             s.Tagline,
		LogoPath:            s.LogoPath,
		AddressLine1:        s.AddressLine1,
		AddressLine2:        s.AddressLine2,
		ContactEmail:        s.ContactEmail,
		TaxNumber:           s.TaxNumber,
		AuthorisedSignatory: s.AuthorisedSignatory,
		BankDetails:         s.BankDetails,
		BaseModel:           s.BaseModel,
	}
}

func (m *subEntityModel) toDomain() *subentity.SubEntity {
	return &subentity.SubEntity{
		ID:                  m.ID,
		Name:                m.Name,
		Prefix:              m.Prefix,
		TaxRate:             parseDecimal(m.TaxRate),
		Tagline:             m.Tagline,
		LogoPath:            m.LogoPath,
		AddressLine1:        m.AddressLine1,
		AddressLine2:        m.AddressLine2,
		ContactEmail:        m.ContactEmail,
		TaxNumber:           m.TaxNumber,
		AuthorisedSignatory: m.AuthorisedSignatory,
		BankDetails:         m.BankDetails,
		BaseModel:           m.BaseModel,
	}
}

// ==================== Client ====================

type clientModel struct {
	ID              string   `bson:"_id"`
	ClientCode      string   `bson:"client_code"`
	Name            string   `bson:"name"`
	BusinessName    string   `bson:"business_name"`
	Email           string   `bson:"email"`
	Phone           string   `bson:"phone,omitempty"`
	Address         string   `bson:"address,omitempty"`
	SubEntityID     string   `bson:"sub_entity_id,omitempty"`
	SubEntityCodes  []string `bson:"sub_entity_codes"`
	types.BaseModel `bson:",inline"`
}

func toClientModel(c *client.Client) *clientModel {
	return &clientModel{
		ID:             c.ID,
		ClientCode:     c.ClientCode,
		Name:           c.Name,
		BusinessName:   c.BusinessName,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		SubEntityID:    c.SubEntityID,
		SubEntityCodes: c.SubEntityCodes,
		BaseModel:      c.BaseModel,
	}
}

func (m *clientModel) toDomain() *client.Client {
	return &client.Client{
		ID:             m.ID,
		ClientCode:     m.ClientCode,
		Name:           m.Name,
		BusinessName:   m.BusinessName,
		Email:          m.Email,
		Phone:          m.Phone,
		Address:        m.Address,
		SubEntityID:    m.SubEntityID,
		SubEntityCodes: m.SubEntityCodes,
		BaseModel:      m.BaseModel,
	}
}

// ==================== Invoice ====================

type lineItemModel struct {
	Title       string `bson:"title"`
	Description string `bson:"description"`
	Quantity    string `bson:"quantity"`
	Rate        string `bson:"rate"`
	Amount      string `bson:"amount"`
}

type invoiceModel struct {
	ID              string          `bson:"_id"`
	InvoiceNo       string          `bson:"invoice_no"`
	InvoiceBase     string          `bson:"invoice_base"`
	ClientID        string          `bson:"client_id"`
	SubEntityID     string          `bson:"sub_entity_id"`
	LineItems       []lineItemModel `bson:"line_items"`
	Subtotal        string          `bson:"subtotal"`
	TaxRate         string          `bson:"tax_rate"`
	TaxAmount       string          `bson:"tax_amount"`
	TotalAmount     string          `bson:"total_amount"`
	InvoiceDate     time.Time       `bson:"invoice_date"`
	DueDate         *time.Time      `bson:"due_date,omitempty"`
	Notes           string          `bson:"notes,omitempty"`
	PDFURL          string          `bson:"pdf_url"`
	PDFPath         string          `bson:"pdf_path"`
	Status          string          `bson:"status"`
	types.BaseModel `bson:",inline"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	items := make([]lineItemModel, 0, len(inv.LineItems))
	for _, li := range inv.LineItems {
		items = append(items, lineItemModel{
			Title:       li.Title,
			Description: li.Description,
			Quantity:    li.Quantity.String(),
			Rate:        li.Rate.String(),
			Amount:      li.Amount.String(),
		})
	}
	return &invoiceModel{
		ID:          inv.ID,
		InvoiceNo:   inv.InvoiceNo,
		InvoiceBase: inv.InvoiceBase,
		ClientID:    inv.ClientID,
		SubEntityID: inv.SubEntityID,
		LineItems:   items,
		Subtotal:    inv.Subtotal.String(),
		TaxRate:     inv.TaxRate.String(),
		TaxAmount:   inv.TaxAmount.String(),
		TotalAmount: inv.TotalAmount.String(),
		InvoiceDate: inv.InvoiceDate,
		DueDate:     inv.DueDate,
		Notes:       inv.Notes,
		PDFURL:      inv.PDFURL,
		PDFPath:     inv.PDFPath,
		Status:      string(inv.Status),
		BaseModel:   inv.BaseModel,
	}
}

func (m *invoiceModel) toDomain() *invoice.Invoice {
	items := make([]invoice.LineItem, 0, len(m.LineItems))
	for _, li := range m.LineItems {
		items = append(items, invoice.LineItem{
			Title:       li.Title,
			Description: li.Description,
			Quantity:    parseDecimal(li.Quantity),
			Rate:        parseDecimal(li.Rate),
			Amount:      parseDecimal(li.Amount),
		})
	}
	return &invoice.Invoice{
		ID:          m.ID,
		InvoiceNo:   m.InvoiceNo,
		InvoiceBase: m.InvoiceBase,
		ClientID:    m.ClientID,
		SubEntityID: m.SubEntityID,
		LineItems:   items,
		Subtotal:    parseDecimal(m.Subtotal),
		TaxRate:     parseDecimal(m.TaxRate),
		TaxAmount:   parseDecimal(m.TaxAmount),
		TotalAmount: parseDecimal(m.TotalAmount),
		InvoiceDate: m.InvoiceDate,
		DueDate:     m.DueDate,
		Notes:       m.Notes,
		PDFURL:      m.PDFURL,
		PDFPath:     m.PDFPath,
		Status:      types.InvoiceStatus(m.Status),
		BaseModel:   m.BaseModel,
	}
}

// ==================== Receipt ====================

type receiptModel struct {
	ID              string    `bson:"_id"`
	Seq             int64     `bson:"seq"`
	ReceiptNo       string    `bson:"receipt_no"`
	ReceiptDate     time.Time `bson:"receipt_date"`
	ClientID        string    `bson:"client_id"`
	InvoiceID       string    `bson:"invoice_id"`
	InvoiceNo       string    `bson:"invoice_no"`
	Amount          string    `bson:"amount"`
	AmountInWords   string    `bson:"amount_in_words"`
	PaymentType     string    `bson:"payment_type"`
	ChequeOrTxnNo   string    `bson:"cheque_or_txn_no,omitempty"`
	Notes           string    `bson:"notes,omitempty"`
	PDFURL          string    `bson:"pdf_url"`
	PDFPath         string    `bson:"pdf_path"`
	types.BaseModel `bson:",inline"`
}

func toReceiptModel(r *receipt.Receipt) *receiptModel {
	return &receiptModel{
		ID:            r.ID,
		Seq:           r.Seq,
		ReceiptNo:     r.ReceiptNo,
		ReceiptDate:   r.ReceiptDate,
		ClientID:      r.ClientID,
		InvoiceID:     r.InvoiceID,
		InvoiceNo:     r.InvoiceNo,
		Amount:        r.Amount.String(),
		AmountInWords: r.AmountInWords,
		PaymentType:   string(r.PaymentType),
		ChequeOrTxnNo: r.ChequeOrTxnNo,
		Notes:         r.Notes,
		PDFURL:        r.PDFURL,
		PDFPath:       r.PDFPath,
		BaseModel:     r.BaseModel,
	}
}

func (m *receiptModel) toDomain() *receipt.Receipt {
	return &receipt.Receipt{
		ID:            m.ID,
		Seq:           m.Seq,
		ReceiptNo:     m.ReceiptNo,
		ReceiptDate:   m.ReceiptDate,
		ClientID:      m.ClientID,
		InvoiceID:     m.InvoiceID,
		InvoiceNo:     m.InvoiceNo,
		Amount:        parseDecimal(m.Amount),
		AmountInWords: m.AmountInWords,
		PaymentType:   types.PaymentType(m.PaymentType),
		ChequeOrTxnNo: m.ChequeOrTxnNo,
		Notes:         m.Notes,
		PDFURL:        m.PDFURL,
		PDFPath:       m.PDFPath,
		BaseModel:     m.BaseModel,
	}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
