package service

import (
	"context"
	"time"

	"github.com/agencyops/agencyops/internal/api/dto"
	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	domainPdf "github.com/agencyops/agencyops/internal/domain/pdf"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	"github.com/agencyops/agencyops/internal/email"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/pdf"
	"github.com/agencyops/agencyops/internal/s3"
	sentryService "github.com/agencyops/agencyops/internal/sentry"
	"github.com/agencyops/agencyops/internal/storage"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
)

// numberRetryDelay is the pause between attempts after a number collision
var numberRetryDelay = 25 * time.Millisecond

type InvoiceService interface {
	// GenerateInvoice allocates a number, renders the PDF and persists the
	// invoice. A collision on the number is retried up to the configured
	// attempt limit, after which ErrNumberContention is returned.
	GenerateInvoice(ctx context.Context, req *dto.GenerateInvoiceRequest) (*dto.GenerateInvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	UpdateInvoiceStatus(ctx context.Context, id string, req *dto.UpdateInvoiceStatusRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error

	// OpenInvoiceFile opens a stored invoice document by file name
	OpenInvoiceFile(ctx context.Context, name string) (*storage.File, error)
	OpenInvoiceFileByID(ctx context.Context, id string) (*storage.File, error)
}

type invoiceService struct {
	ServiceParams
	numbers NumberResolver
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		numbers:       NewNumberResolver(params),
	}
}

func (s *invoiceService) GenerateInvoice(ctx context.Context, req *dto.GenerateInvoiceRequest) (*dto.GenerateInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Once started, generation runs to completion even if the caller goes
	// away, so no staged file or half-numbered record is abandoned.
	ctx = context.WithoutCancel(ctx)
	if s.Sentry != nil {
		span, spanCtx := s.Sentry.StartTransaction(ctx, "invoice.generate")
		ctx = spanCtx
		defer sentryService.FinishSpan(span)
	}

	c, err := s.resolveClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	se, err := s.getSubEntity(ctx, req.SubEntityID)
	if err != nil {
		return nil, err
	}

	items := req.NormalizedLineItems()
	totals := invoice.ComputeTotals(items, se.EffectiveTaxRate(), req.IncludesTax())
	maxAttempts := lo.Max([]int{s.Config.Invoice.MaxAttempts, 1})

	var (
		inv     *invoice.Invoice
		data    []byte
		attempt int
	)
	op := func() error {
		attempt++
		candidate, rendered, err := s.tryPersistInvoice(ctx, req, c, se, items, totals)
		if err == nil {
			inv, data = candidate, rendered
			return nil
		}
		if ierr.IsAlreadyExists(err) {
			s.Logger.Warnw("invoice number collision, retrying",
				"client_id", c.ID,
				"sub_entity_id", se.ID,
				"attempt", attempt,
				"max_attempts", maxAttempts,
			)
			s.noteCollision(ctx, "invoice", attempt, err)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(numberRetryDelay), uint64(maxAttempts-1))
	if err := backoff.Retry(op, policy); err != nil {
		if ierr.IsAlreadyExists(err) {
			return nil, ierr.NewErrorf("could not allocate a unique invoice number after %d attempts", maxAttempts).
				WithHintf("Could not allocate a unique invoice number after %d attempts, please try again", maxAttempts).
				WithReportableDetails(map[string]any{
					"client_id":     c.ID,
					"sub_entity_id": se.ID,
					"attempts":      attempt,
				}).
				Mark(ierr.ErrNumberContention)
		}
		return nil, err
	}

	s.Logger.Infow("generated invoice",
		"invoice_id", inv.ID,
		"invoice_no", inv.InvoiceNo,
		"client_id", c.ID,
		"sub_entity_id", se.ID,
		"total_amount", inv.TotalAmount.String(),
		"attempts", attempt,
	)

	fileName := invoice.FileName(inv.InvoiceNo)
	mirrored := s.mirrorDocument(ctx, s3.DocumentTypeInvoice, trimPDF(fileName), data)
	if req.ShouldEmail() {
		link := s.downloadLink(ctx, s3.DocumentTypeInvoice, trimPDF(fileName), mirrored, inv.PDFURL)
		s.mailInvoice(ctx, inv, c, fileName, link)
	}

	return &dto.GenerateInvoiceResponse{
		InvoiceID: inv.ID,
		InvoiceNo: inv.InvoiceNo,
		PDFURL:    inv.PDFURL,
	}, nil
}

// tryPersistInvoice runs one allocation attempt. The document is rendered and
// staged before the insert and only takes its final name once the insert has
// won the number.
func (s *invoiceService) tryPersistInvoice(
	ctx context.Context,
	req *dto.GenerateInvoiceRequest,
	c *client.Client,
	se *subentity.SubEntity,
	items []invoice.LineItem,
	totals invoice.Totals,
) (*invoice.Invoice, []byte, error) {
	number, err := s.numbers.AllocateInvoiceNumber(ctx, c, se)
	if err != nil {
		return nil, nil, err
	}

	inv := req.ToInvoice(ctx, c.ID, se.ID, items, totals, number)
	fileName := invoice.FileName(inv.InvoiceNo)
	inv.PDFPath = documentPath(storage.KindInvoices, fileName)
	inv.PDFURL = documentURL(storage.KindInvoices, fileName)

	data, err := s.PDFGenerator.RenderInvoicePdf(ctx, s.invoiceData(inv, c, se))
	if err != nil {
		return nil, nil, err
	}

	staged := stagedName(inv.ID)
	if _, err := s.Storage.Save(ctx, storage.KindInvoices, staged, data); err != nil {
		return nil, nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		s.discardDocument(ctx, storage.KindInvoices, staged)
		return nil, nil, err
	}

	if _, err := s.Storage.Rename(ctx, storage.KindInvoices, staged, fileName); err != nil {
		// The record must not outlive a document that never got its name
		if delErr := s.InvoiceRepo.Delete(ctx, inv.ID); delErr != nil {
			s.reportBestEffort(ctx, delErr, "failed to roll back invoice after file error",
				"invoice_id", inv.ID,
				"invoice_no", inv.InvoiceNo,
			)
		}
		s.discardDocument(ctx, storage.KindInvoices, staged)
		return nil, nil, err
	}

	return inv, data, nil
}

func (s *invoiceService) invoiceData(inv *invoice.Invoice, c *client.Client, se *subentity.SubEntity) *domainPdf.InvoiceData {
	data := &domainPdf.InvoiceData{
		InvoiceNo:   inv.InvoiceNo,
		ClientCode:  c.ClientCode,
		InvoiceDate: domainPdf.CustomTime{Time: inv.InvoiceDate},
		Subtotal:    inv.Subtotal,
		TaxRate:     inv.TaxRate,
		TaxAmount:   inv.TaxAmount,
		TotalAmount: inv.TotalAmount,
		Notes:       inv.Notes,
		Biller:      billerInfo(se),
		Recipient:   recipientInfo(c),
		LineItems: lo.Map(inv.LineItems, func(item invoice.LineItem, _ int) domainPdf.LineItemData {
			return domainPdf.LineItemData{
				Title:       item.Title,
				Description: item.Description,
				Quantity:    item.Quantity,
				Rate:        item.Rate,
				Amount:      item.Amount,
			}
		}),
	}
	if inv.DueDate != nil {
		data.DueDate = &domainPdf.CustomTime{Time: *inv.DueDate}
	}
	return data
}

// mailInvoice delivers the invoice to the client. Delivery failures never fail
// the generation.
func (s *invoiceService) mailInvoice(ctx context.Context, inv *invoice.Invoice, c *client.Client, fileName, link string) {
	if s.Mailer == nil {
		return
	}

	var filePath string
	if f, err := s.Storage.Open(ctx, storage.KindInvoices, fileName); err == nil {
		filePath = f.Path
		_ = f.Content.Close()
	}

	dueDate := ""
	if inv.DueDate != nil {
		dueDate = domainPdf.CustomTime{Time: *inv.DueDate}.Display()
	}

	resp, err := s.Mailer.SendInvoice(ctx, email.InvoiceMail{
		ToAddress:   c.Email,
		ClientName:  c.DisplayName(),
		InvoiceNo:   inv.InvoiceNo,
		TotalAmount: pdf.FormatMoney(inv.TotalAmount),
		DueDate:     dueDate,
		FilePath:    filePath,
		PublicURL:   link,
		From:        s.Config.Email.FromAddress,
	})
	if err != nil {
		s.reportBestEffort(ctx, err, "failed to send invoice email",
			"invoice_id", inv.ID,
			"invoice_no", inv.InvoiceNo,
		)
		return
	}
	if resp != nil && resp.MessageID != "" {
		s.Logger.Infow("sent invoice email",
			"invoice_id", inv.ID,
			"message_id", resp.MessageID,
		)
	}
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice_id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv)
	})
	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, id string, req *dto.UpdateInvoiceStatusRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *invoice.Invoice
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := inv.TransitionTo(req.Status); err != nil {
			return err
		}
		inv.UpdatedAt = time.Now().UTC()
		inv.UpdatedBy = types.GetUserID(ctx)
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("updated invoice status",
		"invoice_id", updated.ID,
		"status", updated.Status,
	)
	return dto.NewInvoiceResponse(updated), nil
}

// DeleteInvoice removes the record, then its document and mirror. A missing
// document does not fail the deletion.
func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.InvoiceRepo.Delete(ctx, id); err != nil {
		return err
	}

	fileName := invoice.FileName(inv.InvoiceNo)
	s.discardDocument(ctx, storage.KindInvoices, fileName)
	s.unmirrorDocument(ctx, s3.DocumentTypeInvoice, trimPDF(fileName))

	s.Logger.Infow("deleted invoice",
		"invoice_id", inv.ID,
		"invoice_no", inv.InvoiceNo,
	)
	return nil
}

func (s *invoiceService) OpenInvoiceFile(ctx context.Context, name string) (*storage.File, error) {
	return s.Storage.Open(ctx, storage.KindInvoices, name)
}

func (s *invoiceService) OpenInvoiceFileByID(ctx context.Context, id string) (*storage.File, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Storage.Open(ctx, storage.KindInvoices, invoice.FileName(inv.InvoiceNo))
}
