package service

import (
	"context"

	"github.com/agencyops/agencyops/internal/api/dto"
	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	domainPdf "github.com/agencyops/agencyops/internal/domain/pdf"
	"github.com/agencyops/agencyops/internal/domain/receipt"
	"github.com/agencyops/agencyops/internal/domain/sequence"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/pdf"
	"github.com/agencyops/agencyops/internal/s3"
	"github.com/agencyops/agencyops/internal/storage"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type ReceiptService interface {
	GenerateReceipt(ctx context.Context, req *dto.GenerateReceiptRequest) (*dto.GenerateReceiptResponse, error)
	GetReceipt(ctx context.Context, id string) (*dto.ReceiptResponse, error)
	ListReceipts(ctx context.Context, filter *types.ReceiptFilter) (*dto.ListReceiptsResponse, error)
	DeleteReceipt(ctx context.Context, id string) error
	OpenReceiptFile(ctx context.Context, name string) (*storage.File, error)
}

type receiptService struct {
	ServiceParams
}

func NewReceiptService(params ServiceParams) ReceiptService {
	return &receiptService{ServiceParams: params}
}

func (s *receiptService) GenerateReceipt(ctx context.Context, req *dto.GenerateReceiptRequest) (*dto.GenerateReceiptResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	inv, err := s.InvoiceRepo.GetByNumber(ctx, req.InvoiceNo)
	if err != nil {
		return nil, err
	}

	c, err := s.ClientRepo.Get(ctx, inv.ClientID)
	if err != nil {
		return nil, err
	}
	se, err := s.getSubEntity(ctx, inv.SubEntityID)
	if err != nil {
		return nil, err
	}

	amount := req.AmountFor(inv)
	words, err := pdf.AmountInWords(amount)
	if err != nil {
		return nil, err
	}
	maxAttempts := lo.Max([]int{s.Config.Receipt.MaxAttempts, 1})

	var (
		rcpt    *receipt.Receipt
		data    []byte
		attempt int
	)
	op := func() error {
		attempt++
		candidate, rendered, err := s.tryPersistReceipt(ctx, req, inv, c, se, amount, words)
		if err == nil {
			rcpt, data = candidate, rendered
			return nil
		}
		if ierr.IsAlreadyExists(err) {
			s.Logger.Warnw("receipt number collision, retrying",
				"invoice_no", inv.InvoiceNo,
				"attempt", attempt,
			)
			s.noteCollision(ctx, "receipt", attempt, err)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(numberRetryDelay), uint64(maxAttempts-1))
	if err := backoff.Retry(op, policy); err != nil {
		if ierr.IsAlreadyExists(err) {
			return nil, ierr.NewErrorf("could not allocate a unique receipt number after %d attempts", maxAttempts).
				WithHintf("Could not allocate a unique receipt number after %d attempts, please try again", maxAttempts).
				WithReportableDetails(map[string]any{
					"invoice_no": inv.InvoiceNo,
					"attempts":   attempt,
				}).
				Mark(ierr.ErrNumberContention)
		}
		return nil, err
	}

	s.Logger.Infow("generated receipt",
		"receipt_id", rcpt.ID,
		"receipt_no", rcpt.ReceiptNo,
		"invoice_no", inv.InvoiceNo,
		"amount", rcpt.Amount.String(),
	)

	s.mirrorDocument(ctx, s3.DocumentTypeReceipt, rcpt.ReceiptNo, data)

	return &dto.GenerateReceiptResponse{
		ReceiptID: rcpt.ID,
		ReceiptNo: rcpt.ReceiptNo,
		PDFURL:    rcpt.PDFURL,
	}, nil
}

func (s *receiptService) tryPersistReceipt(
	ctx context.Context,
	req *dto.GenerateReceiptRequest,
	inv *invoice.Invoice,
	c *client.Client,
	se *subentity.SubEntity,
	amount decimal.Decimal,
	words string,
) (*receipt.Receipt, []byte, error) {
	seq, err := s.SequenceRepo.Next(ctx, sequence.KeyReceipt)
	if err != nil {
		return nil, nil, err
	}

	rcpt := req.ToReceipt(ctx, inv, seq, receipt.FormatNumber(s.Config.Receipt.Prefix, seq), amount, words)
	fileName := receipt.FileName(rcpt.ReceiptNo)
	rcpt.PDFPath = documentPath(storage.KindReceipts, fileName)
	rcpt.PDFURL = documentURL(storage.KindReceipts, fileName)

	data, err := s.PDFGenerator.RenderReceiptPdf(ctx, &domainPdf.ReceiptData{
		ReceiptNo:     rcpt.ReceiptNo,
		ClientCode:    c.ClientCode,
		ReceiptDate:   domainPdf.CustomTime{Time: rcpt.ReceiptDate},
		InvoiceNo:     rcpt.InvoiceNo,
		Amount:        rcpt.Amount,
		PaymentType:   string(rcpt.PaymentType),
		ChequeOrTxnNo: rcpt.ChequeOrTxnNo,
		Notes:         rcpt.Notes,
		Biller:        billerInfo(se),
		Recipient:     recipientInfo(c),
	})
	if err != nil {
		return nil, nil, err
	}

	staged := stagedName(rcpt.ID)
	if _, err := s.Storage.Save(ctx, storage.KindReceipts, staged, data); err != nil {
		return nil, nil, err
	}
	if err := s.ReceiptRepo.Create(ctx, rcpt); err != nil {
		s.discardDocument(ctx, storage.KindReceipts, staged)
		return nil, nil, err
	}
	if _, err := s.Storage.Rename(ctx, storage.KindReceipts, staged, fileName); err != nil {
		if delErr := s.ReceiptRepo.Delete(ctx, rcpt.ID); delErr != nil {
			s.reportBestEffort(ctx, delErr, "failed to roll back receipt after file error",
				"receipt_id", rcpt.ID,
			)
		}
		s.discardDocument(ctx, storage.KindReceipts, staged)
		return nil, nil, err
	}

	return rcpt, data, nil
}

func (s *receiptService) GetReceipt(ctx context.Context, id string) (*dto.ReceiptResponse, error) {
	if id == "" {
		return nil, ierr.NewError("receipt_id is required").
			WithHint("Receipt ID is required").
			Mark(ierr.ErrValidation)
	}
	rcpt, err := s.ReceiptRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewReceiptResponse(rcpt), nil
}

func (s *receiptService) ListReceipts(ctx context.Context, filter *types.ReceiptFilter) (*dto.ListReceiptsResponse, error) {
	if filter == nil {
		filter = types.NewReceiptFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	receipts, err := s.ReceiptRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.ReceiptRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(receipts, func(r *receipt.Receipt, _ int) *dto.ReceiptResponse {
		return dto.NewReceiptResponse(r)
	})
	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

func (s *receiptService) DeleteReceipt(ctx context.Context, id string) error {
	rcpt, err := s.ReceiptRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ReceiptRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.discardDocument(ctx, storage.KindReceipts, receipt.FileName(rcpt.ReceiptNo))
	s.unmirrorDocument(ctx, s3.DocumentTypeReceipt, rcpt.ReceiptNo)

	s.Logger.Infow("deleted receipt",
		"receipt_id", rcpt.ID,
		"receipt_no", rcpt.ReceiptNo,
	)
	return nil
}

func (s *receiptService) OpenReceiptFile(ctx context.Context, name string) (*storage.File, error) {
	return s.Storage.Open(ctx, storage.KindReceipts, name)
}
