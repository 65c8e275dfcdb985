package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/agencyops/agencyops/internal/api/dto"
	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	"github.com/agencyops/agencyops/internal/email"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/s3"
	"github.com/agencyops/agencyops/internal/storage"
	"github.com/agencyops/agencyops/internal/testutil"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  InvoiceService
	params   ServiceParams
	testData struct {
		client    *client.Client
		subEntity *subentity.SubEntity
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	numberRetryDelay = time.Millisecond
	s.setupService()
	s.setupTestData()
}

func (s *InvoiceServiceSuite) setupService() {
	s.params = testServiceParams(&s.BaseServiceTestSuite)
	s.service = NewInvoiceService(s.params)
}

func (s *InvoiceServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.subEntity = &subentity.SubEntity{
		ID:        "se_agh",
		Name:      "Agency House",
		Prefix:    "AGH",
		TaxRate:   subentity.DefaultTaxRate,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.Require().NoError(s.GetStores().SubEntityRepo.Create(ctx, s.testData.subEntity))

	s.testData.client = &client.Client{
		ID:         "client_acme",
		ClientCode: "AGH-C001",
		Name:       "Asha Rao",
		Email:      "asha@acme.test",
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	s.Require().NoError(s.GetStores().ClientRepo.Create(ctx, s.testData.client))
}

func (s *InvoiceServiceSuite) request() *dto.GenerateInvoiceRequest {
	return &dto.GenerateInvoiceRequest{
		ClientID:    s.testData.client.ID,
		SubEntityID: s.testData.subEntity.ID,
		LineItems: []dto.InvoiceLineItemRequest{
			{
				Title:    "Brand strategy",
				Quantity: dto.NewLooseDecimal(decimal.NewFromInt(2)),
				Rate:     dto.NewLooseDecimal(decimal.NewFromInt(1000)),
			},
			{
				Description: "Social media retainer\nMarch",
				Quantity:    dto.NewLooseDecimal(decimal.NewFromInt(1)),
				Rate:        dto.NewLooseDecimal(decimal.RequireFromString("500.50")),
			},
		},
	}
}

func (s *InvoiceServiceSuite) invoices() []*invoice.Invoice {
	items, err := s.GetStores().InvoiceRepo.List(s.GetContext(), &types.InvoiceFilter{})
	s.Require().NoError(err)
	return items
}

func duplicateNumber(inv *invoice.Invoice) error {
	return invoice.NewDuplicateNumberError(fmt.Errorf("duplicate key"), inv.InvoiceNo)
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceScenario() {
	first, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().NoError(err)
	s.Equal("AGH-001", first.InvoiceNo)
	s.Equal("/v1/invoices/file/AGH-001.pdf", first.PDFURL)

	second, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().NoError(err)
	s.Equal("AGH-001 (1)", second.InvoiceNo)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), second.InvoiceID)
	s.Require().NoError(err)
	s.Equal("AGH-001", inv.InvoiceBase)
	s.Equal("invoices/AGH-001 (1).pdf", inv.PDFPath)
	s.Equal(types.InvoiceStatusPending, inv.Status)

	s.Equal([]string{"AGH-001 (1).pdf", "AGH-001.pdf"}, storedDocuments(&s.BaseServiceTestSuite, storage.KindInvoices))
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceTotals() {
	tests := []struct {
		name       string
		includeTax *bool
		taxAmount  string
		total      string
	}{
		{name: "tax included by default", includeTax: nil, taxAmount: "450.09", total: "2950.59"},
		{name: "tax excluded", includeTax: lo.ToPtr(false), taxAmount: "0", total: "2500.5"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := s.request()
			req.IncludeTax = tt.includeTax

			resp, err := s.service.GenerateInvoice(s.GetContext(), req)
			s.Require().NoError(err)

			inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.InvoiceID)
			s.Require().NoError(err)
			s.True(decimal.RequireFromString("2500.50").Equal(inv.Subtotal))
			s.True(decimal.RequireFromString(tt.taxAmount).Equal(inv.TaxAmount), "tax %s", inv.TaxAmount)
			s.True(decimal.RequireFromString(tt.total).Equal(inv.TotalAmount), "total %s", inv.TotalAmount)

			s.Require().Len(inv.LineItems, 2)
			s.Equal("Social media retainer", inv.LineItems[1].Title)
			s.Equal("Brand strategy", inv.LineItems[0].Description)
		})
	}
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceResolvesClientReference() {
	for _, ref := range []string{"AGH-C001", "ASHA@acme.test"} {
		req := s.request()
		req.ClientID = ref

		resp, err := s.service.GenerateInvoice(s.GetContext(), req)
		s.Require().NoError(err, ref)

		inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.InvoiceID)
		s.Require().NoError(err)
		s.Equal(s.testData.client.ID, inv.ClientID)
	}
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceRejectsBadInput() {
	tests := []struct {
		name   string
		mutate func(*dto.GenerateInvoiceRequest)
		check  func(error) bool
	}{
		{
			name:   "no line items",
			mutate: func(r *dto.GenerateInvoiceRequest) { r.LineItems = nil },
			check:  ierr.IsValidation,
		},
		{
			name: "negative rate",
			mutate: func(r *dto.GenerateInvoiceRequest) {
				r.LineItems[0].Rate = dto.NewLooseDecimal(decimal.NewFromInt(-1))
			},
			check: ierr.IsValidation,
		},
		{
			name: "rate beyond bound",
			mutate: func(r *dto.GenerateInvoiceRequest) {
				r.LineItems[0].Rate = dto.NewLooseDecimal(decimal.RequireFromString("9223372036854775808"))
			},
			check: ierr.IsValidation,
		},
		{
			name: "quantity beyond bound",
			mutate: func(r *dto.GenerateInvoiceRequest) {
				r.LineItems[1].Quantity = dto.NewLooseDecimal(dto.MaxLineQuantity.Add(decimal.NewFromInt(1)))
			},
			check: ierr.IsValidation,
		},
		{
			name: "too many line items",
			mutate: func(r *dto.GenerateInvoiceRequest) {
				for len(r.LineItems) <= 100 {
					r.LineItems = append(r.LineItems, r.LineItems[0])
				}
			},
			check: ierr.IsValidation,
		},
		{
			name:   "unknown client",
			mutate: func(r *dto.GenerateInvoiceRequest) { r.ClientID = "nobody@acme.test" },
			check:  ierr.IsNotFound,
		},
		{
			name:   "unknown sub-entity",
			mutate: func(r *dto.GenerateInvoiceRequest) { r.SubEntityID = "se_missing" },
			check:  ierr.IsNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := s.request()
			tt.mutate(req)

			_, err := s.service.GenerateInvoice(s.GetContext(), req)
			s.Require().Error(err)
			s.True(tt.check(err), "unexpected error: %v", err)
		})
	}
	s.Empty(s.invoices())
	s.Empty(storedDocuments(&s.BaseServiceTestSuite, storage.KindInvoices))
}

func (s *InvoiceServiceSuite) TestRetryThenSuccess() {
	calls := 0
	s.GetStores().InvoiceRepo.BeforeCreate(func(_ context.Context, inv *invoice.Invoice) error {
		calls++
		if calls == 1 {
			return duplicateNumber(inv)
		}
		return nil
	})

	resp, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().NoError(err)
	s.Equal(2, calls)

	// the first attempt minted AGH-001 and lost it, the retry mints again
	s.Equal("AGH-002", resp.InvoiceNo)

	records := s.invoices()
	s.Require().Len(records, 1)
	s.Equal(resp.InvoiceID, records[0].ID)
	s.Equal([]string{"AGH-002.pdf"}, storedDocuments(&s.BaseServiceTestSuite, storage.KindInvoices))
}

func (s *InvoiceServiceSuite) TestRetryExhaustion() {
	calls := 0
	s.GetStores().InvoiceRepo.BeforeCreate(func(_ context.Context, inv *invoice.Invoice) error {
		calls++
		return duplicateNumber(inv)
	})

	_, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().Error(err)
	s.True(ierr.IsNumberContention(err))
	s.False(ierr.IsAlreadyExists(err))
	s.Contains(err.Error(), "could not allocate a unique invoice number after 3 attempts")
	s.Equal(ierr.ErrCodeNumberContention, ierr.CodeFromErr(err))
	s.Equal(3, calls)

	s.Empty(s.invoices())
	s.Empty(storedDocuments(&s.BaseServiceTestSuite, storage.KindInvoices))
}

func (s *InvoiceServiceSuite) TestLosingWriterKeepsWinnerDocument() {
	ctx := s.GetContext()
	winnerPDF := []byte("%PDF-1.4\n%winner\n")

	calls := 0
	s.GetStores().InvoiceRepo.BeforeCreate(func(ctx context.Context, inv *invoice.Invoice) error {
		calls++
		if calls > 1 {
			return nil
		}
		winner := *inv
		winner.ID = "inv_winner"
		if _, err := s.GetStorage().Save(ctx, storage.KindInvoices, invoice.FileName(winner.InvoiceNo), winnerPDF); err != nil {
			return err
		}
		return s.GetStores().InvoiceRepo.Seed(ctx, &winner)
	})

	resp, err := s.service.GenerateInvoice(ctx, s.request())
	s.Require().NoError(err)
	s.Equal("AGH-001 (1)", resp.InvoiceNo)

	f, err := s.service.OpenInvoiceFile(ctx, "AGH-001.pdf")
	s.Require().NoError(err)
	defer f.Content.Close()
	body, err := io.ReadAll(f.Content)
	s.Require().NoError(err)
	s.Equal(winnerPDF, body)

	s.Len(s.invoices(), 2)
	s.Equal([]string{"AGH-001 (1).pdf", "AGH-001.pdf"}, storedDocuments(&s.BaseServiceTestSuite, storage.KindInvoices))
}

func (s *InvoiceServiceSuite) TestRenderFailureLeavesNothing() {
	failing := testutil.NewMockPDFGenerator()
	failing.On("RenderInvoicePdf", mock.Anything, mock.Anything).
		Return(nil, ierr.NewError("chrome crashed").Mark(ierr.ErrSystem))
	s.SetPDFGenerator(failing)
	s.setupService()

	_, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().Error(err)
	s.False(ierr.IsNumberContention(err))
	failing.AssertNumberOfCalls(s.T(), "RenderInvoicePdf", 1)

	s.Empty(s.invoices())
	s.Empty(storedDocuments(&s.BaseServiceTestSuite, storage.KindInvoices))
}

func (s *InvoiceServiceSuite) TestConcurrentGenerationIssuesUniqueNumbers() {
	const workers = 8

	cfg := s.GetConfig()
	prev := cfg.Invoice.MaxAttempts
	cfg.Invoice.MaxAttempts = 10
	defer func() { cfg.Invoice.MaxAttempts = prev }()

	_, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().NoError(err)

	p := pool.NewWithResults[string]().WithErrors()
	for i := 0; i < workers; i++ {
		p.Go(func() (string, error) {
			resp, err := s.service.GenerateInvoice(s.GetContext(), s.request())
			if err != nil {
				return "", err
			}
			return resp.InvoiceNo, nil
		})
	}
	numbers, err := p.Wait()
	s.Require().NoError(err)

	s.Len(lo.Uniq(numbers), workers)
	for i := 1; i <= workers; i++ {
		s.Contains(numbers, fmt.Sprintf("AGH-001 (%d)", i))
	}

	docs := storedDocuments(&s.BaseServiceTestSuite, storage.KindInvoices)
	s.Len(docs, workers+1)
	for _, name := range docs {
		s.False(strings.HasPrefix(name, pendingPrefix), "staged file left behind: %s", name)
	}
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceMailsClient() {
	resp, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().NoError(err)

	s.GetMailer().AssertCalled(s.T(), "SendInvoice", mock.Anything, mock.MatchedBy(func(m email.InvoiceMail) bool {
		return m.InvoiceNo == resp.InvoiceNo &&
			m.ToAddress == "asha@acme.test" &&
			m.TotalAmount == "₹2950.59" &&
			m.PublicURL == "http://localhost:8080/v1/invoices/file/AGH-001.pdf" &&
			strings.HasSuffix(m.FilePath, "AGH-001.pdf")
	}))
}

func (s *InvoiceServiceSuite) TestMailFailureDoesNotFailGeneration() {
	failing := testutil.NewMockMailer()
	failing.On("SendInvoice", mock.Anything, mock.Anything).
		Return(nil, ierr.NewError("smtp down").Mark(ierr.ErrHTTPClient))
	s.SetMailer(failing)
	s.setupService()

	resp, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().NoError(err)
	s.Equal("AGH-001", resp.InvoiceNo)
	failing.AssertNumberOfCalls(s.T(), "SendInvoice", 1)
}

func (s *InvoiceServiceSuite) TestSendEmailDisabled() {
	silent := testutil.NewMockMailer()
	s.SetMailer(silent)
	s.setupService()

	req := s.request()
	req.SendEmail = lo.ToPtr(false)
	_, err := s.service.GenerateInvoice(s.GetContext(), req)
	s.Require().NoError(err)
	silent.AssertNotCalled(s.T(), "SendInvoice", mock.Anything, mock.Anything)
}

func (s *InvoiceServiceSuite) TestMirrorsToS3BestEffort() {
	mirror := testutil.NewMockS3()
	mirror.On("UploadDocument", mock.Anything, mock.MatchedBy(func(d *s3.Document) bool {
		return d.ID == "AGH-001" && d.Type == s3.DocumentTypeInvoice && len(d.Data) > 0
	})).Return(ierr.NewError("bucket unavailable").Mark(ierr.ErrHTTPClient))

	s.params.S3 = mirror
	s.service = NewInvoiceService(s.params)

	resp, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().NoError(err)
	s.Equal("AGH-001", resp.InvoiceNo)
	mirror.AssertExpectations(s.T())
	mirror.AssertNotCalled(s.T(), "GetPresignedUrl", mock.Anything, mock.Anything, mock.Anything)
}

func (s *InvoiceServiceSuite) TestMailLinksToMirroredCopy() {
	mirror := testutil.NewMockS3()
	mirror.On("UploadDocument", mock.Anything, mock.Anything).Return(nil)
	mirror.On("GetPresignedUrl", mock.Anything, "AGH-001", s3.DocumentTypeInvoice).
		Return("https://docs.s3.test/invoices/AGH-001.pdf?sig=abc", nil)

	mailer := testutil.NewMockMailer()
	mailer.On("SendInvoice", mock.Anything, mock.MatchedBy(func(m email.InvoiceMail) bool {
		return m.PublicURL == "https://docs.s3.test/invoices/AGH-001.pdf?sig=abc"
	})).Return(&email.SendEmailResponse{MessageID: "msg_1", Success: true}, nil).Once()

	s.params.S3 = mirror
	s.params.Mailer = mailer
	s.service = NewInvoiceService(s.params)

	_, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().NoError(err)
	mirror.AssertExpectations(s.T())
	mailer.AssertExpectations(s.T())
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceStatus() {
	resp, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().NoError(err)

	paid, err := s.service.UpdateInvoiceStatus(s.GetContext(), resp.InvoiceID, &dto.UpdateInvoiceStatusRequest{
		Status: types.InvoiceStatusPaid,
	})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusPaid, paid.Status)

	_, err = s.service.UpdateInvoiceStatus(s.GetContext(), resp.InvoiceID, &dto.UpdateInvoiceStatusRequest{
		Status: types.InvoiceStatusCancelled,
	})
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.UpdateInvoiceStatus(s.GetContext(), resp.InvoiceID, &dto.UpdateInvoiceStatusRequest{
		Status: "Refunded",
	})
	s.True(ierr.IsValidation(err))

	s.Equal(int64(2), s.GetDB().TxCount())
}

func (s *InvoiceServiceSuite) TestListInvoices() {
	for i := 0; i < 3; i++ {
		_, err := s.service.GenerateInvoice(s.GetContext(), s.request())
		s.Require().NoError(err)
	}

	filter := types.NewInvoiceFilter()
	filter.ClientID = s.testData.client.ID
	filter.Limit = lo.ToPtr(2)

	resp, err := s.service.ListInvoices(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(3, resp.Pagination.Total)
	s.Equal(2, resp.Pagination.Limit)

	filter.ClientID = "client_other"
	resp, err = s.service.ListInvoices(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Empty(resp.Items)
}

func (s *InvoiceServiceSuite) TestDeleteInvoiceRemovesDocument() {
	resp, err := s.service.GenerateInvoice(s.GetContext(), s.request())
	s.Require().NoError(err)

	f, err := s.service.OpenInvoiceFileByID(s.GetContext(), resp.InvoiceID)
	s.Require().NoError(err)
	s.Equal("AGH-001.pdf", f.Name)
	s.Require().NoError(f.Content.Close())

	s.Require().NoError(s.service.DeleteInvoice(s.GetContext(), resp.InvoiceID))

	_, err = s.service.GetInvoice(s.GetContext(), resp.InvoiceID)
	s.True(ierr.IsNotFound(err))
	_, err = s.service.OpenInvoiceFile(s.GetContext(), "AGH-001.pdf")
	s.True(ierr.IsNotFound(err))

	err = s.service.DeleteInvoice(s.GetContext(), resp.InvoiceID)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestOpenInvoiceFileRejectsTraversal() {
	_, err := s.service.OpenInvoiceFile(s.GetContext(), "../secrets.pdf")
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}
