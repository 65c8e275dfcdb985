package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/receipt"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/postgres"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RepositorySuite struct {
	suite.Suite
	ctx  context.Context
	mock sqlmock.Sqlmock
	db   *postgres.DB
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	raw, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.mock = mock
	s.db = postgres.NewFromSqlx(sqlx.NewDb(raw, "postgres"), logger.NewNoopLogger())
}

func (s *RepositorySuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *RepositorySuite) TestSequenceNext() {
	repo := NewSequenceRepository(s.db, logger.NewNoopLogger())

	s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO counters")).
		WithArgs("receiptSeq").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(8)))

	v, err := repo.Next(s.ctx, "receiptSeq")
	s.NoError(err)
	s.Equal(int64(8), v)
}

func (s *RepositorySuite) TestSequenceNext_StorageFailure() {
	repo := NewSequenceRepository(s.db, logger.NewNoopLogger())

	s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO counters")).
		WithArgs("receiptSeq").
		WillReturnError(sql.ErrConnDone)

	_, err := repo.Next(s.ctx, "receiptSeq")
	s.True(ierr.IsDatabase(err))
}

func (s *RepositorySuite) TestSequenceNext_EmptyKey() {
	repo := NewSequenceRepository(s.db, logger.NewNoopLogger())

	_, err := repo.Next(s.ctx, "  ")
	s.True(ierr.IsValidation(err))
}

func (s *RepositorySuite) TestSequenceCurrent_Absent() {
	repo := NewSequenceRepository(s.db, logger.NewNoopLogger())

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM counters")).
		WithArgs("subentity:se1:invoice").
		WillReturnError(sql.ErrNoRows)

	v, err := repo.Current(s.ctx, "subentity:se1:invoice")
	s.NoError(err)
	s.Zero(v)
}

func sampleInvoice() *invoice.Invoice {
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	inv := &invoice.Invoice{
		ID:          "inv_1",
		InvoiceNo:   "AGH-001 (2)",
		InvoiceBase: "AGH-001",
		ClientID:    "client_1",
		SubEntityID: "subent_1",
		LineItems: []invoice.LineItem{
			invoice.NormalizeLineItem("Reels", "", decimal.NewFromInt(2), decimal.NewFromInt(500)),
		},
		Subtotal:    decimal.NewFromInt(1000),
		TaxRate:     decimal.NewFromInt(18),
		TaxAmount:   decimal.NewFromInt(180),
		TotalAmount: decimal.NewFromInt(1180),
		InvoiceDate: now,
		Status:      types.InvoiceStatusPending,
	}
	inv.CreatedAt, inv.UpdatedAt = now, now
	return inv
}

func (s *RepositorySuite) TestInvoiceCreate() {
	repo := NewInvoiceRepository(s.db, logger.NewNoopLogger())

	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(repo.Create(s.ctx, sampleInvoice()))
}

func (s *RepositorySuite) TestInvoiceCreate_DuplicateNumber() {
	repo := NewInvoiceRepository(s.db, logger.NewNoopLogger())

	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "invoices_invoice_no_key"})

	err := repo.Create(s.ctx, sampleInvoice())
	s.True(ierr.IsAlreadyExists(err))
}

func (s *RepositorySuite) TestInvoiceCreate_OtherFailure() {
	repo := NewInvoiceRepository(s.db, logger.NewNoopLogger())

	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Create(s.ctx, sampleInvoice())
	s.True(ierr.IsDatabase(err))
	s.False(ierr.IsAlreadyExists(err))
}

func (s *RepositorySuite) TestInvoiceGet_NotFound() {
	repo := NewInvoiceRepository(s.db, logger.NewNoopLogger())

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(s.ctx, "missing")
	s.True(ierr.IsNotFound(err))
}

func (s *RepositorySuite) TestInvoiceGetByNumber_DecodesLineItems() {
	repo := NewInvoiceRepository(s.db, logger.NewNoopLogger())
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	columns := []string{
		"id", "invoice_no", "invoice_base", "client_id", "sub_entity_id", "line_items",
		"subtotal", "tax_rate", "tax_amount", "total_amount", "invoice_date", "due_date", "notes",
		"pdf_url", "pdf_path", "status", "created_at", "updated_at", "created_by", "updated_by",
	}
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE invoice_no = $1")).
		WithArgs("AGH-001").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"inv_1", "AGH-001", "AGH-001", "client_1", "subent_1",
			[]byte(`[{"title":"Reels","description":"Reels","quantity":"2","rate":"500","amount":"1000"}]`),
			"1000", "18", "180", "1180", now, nil, "",
			"/v1/invoices/file/AGH-001.pdf", "invoices/AGH-001.pdf", "Pending", now, now, "", "",
		))

	inv, err := repo.GetByNumber(s.ctx, "AGH-001")
	s.Require().NoError(err)
	s.Len(inv.LineItems, 1)
	s.True(inv.LineItems[0].Amount.Equal(decimal.NewFromInt(1000)))
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(1180)))
	s.Nil(inv.DueDate)
	s.Equal(types.InvoiceStatusPending, inv.Status)
}

func (s *RepositorySuite) TestInvoiceListNumbersForPair() {
	repo := NewInvoiceRepository(s.db, logger.NewNoopLogger())
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT invoice_no, created_at FROM invoices")).
		WithArgs("client_1", "subent_1").
		WillReturnRows(sqlmock.NewRows([]string{"invoice_no", "created_at"}).
			AddRow("AGH-001", t0).
			AddRow("AGH-001 (2)", t0.Add(time.Hour)))

	entries, err := repo.ListNumbersForPair(s.ctx, "client_1", "subent_1")
	s.Require().NoError(err)
	s.Equal([]string{"AGH-001", "AGH-001 (2)"}, []string{entries[0].InvoiceNo, entries[1].InvoiceNo})
}

func (s *RepositorySuite) TestInvoiceList_AppliesFilterAndPaging() {
	repo := NewInvoiceRepository(s.db, logger.NewNoopLogger())
	filter := types.NewInvoiceFilter()
	filter.ClientID = "client_1"
	filter.Status = types.InvoiceStatusPaid
	filter.Limit = lo.ToPtr(10)

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE client_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4")).
		WithArgs("client_1", "Paid", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, err := repo.List(s.ctx, filter)
	s.NoError(err)
	s.Empty(items)
}

func (s *RepositorySuite) TestInvoiceDelete_NotFound() {
	repo := NewInvoiceRepository(s.db, logger.NewNoopLogger())

	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invoices")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s.True(ierr.IsNotFound(repo.Delete(s.ctx, "missing")))
}

func (s *RepositorySuite) TestReceiptCreate_DuplicateSeq() {
	repo := NewReceiptRepository(s.db, logger.NewNoopLogger())
	now := time.Now().UTC()

	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO receipts")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "receipts_seq_key"})

	err := repo.Create(s.ctx, &receipt.Receipt{
		ID:          "rcpt_1",
		Seq:         7,
		ReceiptNo:   "RUD-007",
		ReceiptDate: now,
		Amount:      decimal.NewFromInt(100),
		PaymentType: types.PaymentTypeCash,
	})
	s.True(ierr.IsAlreadyExists(err))
}

func (s *RepositorySuite) TestReceiptCount() {
	repo := NewReceiptRepository(s.db, logger.NewNoopLogger())
	filter := types.NewReceiptFilter()
	filter.InvoiceID = "inv_1"

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM receipts WHERE invoice_id = $1")).
		WithArgs("inv_1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(s.ctx, filter)
	s.NoError(err)
	s.Equal(3, n)
}

func (s *RepositorySuite) TestClientGetByReference() {
	repo := NewClientRepository(s.db, logger.NewNoopLogger())
	now := time.Now().UTC()

	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE client_code = $1 OR LOWER(email) = LOWER($1)")).
		WithArgs("AGH-C001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "client_code", "name", "business_name", "email", "phone", "address",
			"sub_entity_id", "sub_entity_codes", "created_at", "updated_at", "created_by", "updated_by",
		}).AddRow("client_1", "AGH-C001", "Jane", "Jane Co", "jane@example.com", "", "",
			"subent_1", "{AGH,PAN}", now, now, "", ""))

	c, err := repo.GetByReference(s.ctx, "AGH-C001")
	s.Require().NoError(err)
	s.Equal("client_1", c.ID)
	s.Equal([]string{"AGH", "PAN"}, c.SubEntityCodes)
}

func (s *RepositorySuite) TestSubEntityCreate_DuplicateName() {
	repo := NewSubEntityRepository(s.db, logger.NewNoopLogger())

	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sub_entities")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(s.ctx, sampleSubEntity())
	s.True(ierr.IsAlreadyExists(err))
}

func sampleSubEntity() *subentity.SubEntity {
	now := time.Now().UTC()
	se := &subentity.SubEntity{
		ID:      "subent_1",
		Name:    "Agency Hub",
		Prefix:  "AGH",
		TaxRate: subentity.DefaultTaxRate,
	}
	se.CreatedAt, se.UpdatedAt = now, now
	return se
}
