package pdf

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strings"

	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/domain/pdf"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/pdfgen"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// mainLogoCandidates are the agency-wide logo locations, searched under every
// asset directory
var mainLogoCandidates = []string{"logo.png", "public/logo.png", "assets/logo.png", "public/assets/logo.png"}

// Generator defines the interface for PDF generation operations
type Generator interface {
	RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error)
	RenderReceiptPdf(ctx context.Context, data *pdf.ReceiptData) ([]byte, error)
}

type service struct {
	renderer  pdfgen.HTMLRenderer
	assets    *AssetResolver
	templates *template.Template
}

// NewGenerator creates a new PDF service
func NewGenerator(cfg *config.Configuration, renderer pdfgen.HTMLRenderer) (Generator, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &service{
		renderer:  renderer,
		assets:    NewAssetResolver(cfg.PDF.AssetDirs),
		templates: tmpl,
	}, nil
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("documents").Funcs(template.FuncMap{
		"money": FormatMoney,
		"inc":   func(i int) int { return i + 1 },
		"join":  strings.Join,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to parse document templates").
			Mark(ierr.ErrSystem)
	}
	return tmpl, nil
}

// FormatMoney renders an amount with the rupee sign and exactly two decimals
func FormatMoney(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

type invoiceView struct {
	*pdf.InvoiceData
	MainLogo      template.URL
	SubLogo       template.URL
	AmountInWords string
	FooterParts   []string
}

type receiptView struct {
	*pdf.ReceiptData
	MainLogo      template.URL
	AmountInWords string
	FooterParts   []string
}

// RenderInvoicePdf composes the invoice markup and prints it on A4
func (s *service) RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error) {
	if data == nil || data.Biller == nil || data.Recipient == nil {
		return nil, ierr.NewError("invoice data is incomplete").
			WithHint("Invoice data must include biller and recipient").
			Mark(ierr.ErrValidation)
	}

	html, err := s.RenderInvoiceHTML(data)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderHTML(ctx, html, pdfgen.A4(6, 6, 10, 6))
}

// RenderInvoiceHTML returns the markup that RenderInvoicePdf prints
func (s *service) RenderInvoiceHTML(data *pdf.InvoiceData) (string, error) {
	words, err := AmountInWords(data.TotalAmount)
	if err != nil {
		return "", err
	}
	view := invoiceView{
		InvoiceData:   data,
		MainLogo:      template.URL(s.assets.DataURI(mainLogoCandidates...)),
		SubLogo:       template.URL(s.subLogo(data.Biller.LogoPath)),
		AmountInWords: words,
		FooterParts:   footerParts(data.Biller),
	}
	return s.execute("invoice.html", view)
}

// RenderReceiptPdf composes the receipt markup and prints it on A4
func (s *service) RenderReceiptPdf(ctx context.Context, data *pdf.ReceiptData) ([]byte, error) {
	if data == nil || data.Biller == nil || data.Recipient == nil {
		return nil, ierr.NewError("receipt data is incomplete").
			WithHint("Receipt data must include biller and recipient").
			Mark(ierr.ErrValidation)
	}

	html, err := s.RenderReceiptHTML(data)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderHTML(ctx, html, pdfgen.A4(10, 10, 10, 10))
}

// RenderReceiptHTML returns the markup that RenderReceiptPdf prints
func (s *service) RenderReceiptHTML(data *pdf.ReceiptData) (string, error) {
	words, err := AmountInWords(data.Amount)
	if err != nil {
		return "", err
	}
	view := receiptView{
		ReceiptData:   data,
		MainLogo:      template.URL(s.assets.DataURI(mainLogoCandidates...)),
		AmountInWords: words,
		FooterParts:   footerParts(data.Biller),
	}
	return s.execute("receipt.html", view)
}

func (s *service) subLogo(logoPath string) string {
	if logoPath == "" {
		return ""
	}
	return s.assets.DataURI(logoPath, "uploads/"+strings.TrimLeft(logoPath, "/"))
}

func (s *service) execute(name string, view any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, view); err != nil {
		return "", ierr.WithError(err).
			WithHintf("failed to render %s", name).
			Mark(ierr.ErrSystem)
	}
	return buf.String(), nil
}

func footerParts(b *pdf.BillerInfo) []string {
	return lo.Compact([]string{b.AddressLine1, b.AddressLine2, b.ContactEmail})
}
