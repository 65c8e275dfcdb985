package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/agencyops/agencyops/internal/domain/receipt"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/postgres"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

type receiptRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewReceiptRepository(db *postgres.DB, logger *logger.Logger) receipt.Repository {
	return &receiptRepository{db: db, logger: logger}
}

type receiptRow struct {
	ID            string          `db:"id"`
	Seq           int64           `db:"seq"`
	ReceiptNo     string          `db:"receipt_no"`
	ReceiptDate   time.Time       `db:"receipt_date"`
	ClientID      string          `db:"client_id"`
	InvoiceID     string          `db:"invoice_id"`
	InvoiceNo     string          `db:"invoice_no"`
	Amount        decimal.Decimal `db:"amount"`
	AmountInWords string          `db:"amount_in_words"`
	PaymentType   string          `db:"payment_type"`
	ChequeOrTxnNo string          `db:"cheque_or_txn_no"`
	Notes         string          `db:"notes"`
	PDFURL        string          `db:"pdf_url"`
	PDFPath       string          `db:"pdf_path"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	CreatedBy     string          `db:"created_by"`
	UpdatedBy     string          `db:"updated_by"`
}

const receiptColumns = `id, seq, receipt_no, receipt_date, client_id, invoice_id, invoice_no,
	amount, amount_in_words, payment_type, cheque_or_txn_no, notes, pdf_url, pdf_path,
	created_at, updated_at, created_by, updated_by`

func (row *receiptRow) toDomain() *receipt.Receipt {
	rc := &receipt.Receipt{
		ID:            row.ID,
		Seq:           row.Seq,
		ReceiptNo:     row.ReceiptNo,
		ReceiptDate:   row.ReceiptDate,
		ClientID:      row.ClientID,
		InvoiceID:     row.InvoiceID,
		InvoiceNo:     row.InvoiceNo,
		Amount:        row.Amount,
		AmountInWords: row.AmountInWords,
		PaymentType:   types.PaymentType(row.PaymentType),
		ChequeOrTxnNo: row.ChequeOrTxnNo,
		Notes:         row.Notes,
		PDFURL:        row.PDFURL,
		PDFPath:       row.PDFPath,
	}
	rc.CreatedAt, rc.UpdatedAt = row.CreatedAt, row.UpdatedAt
	rc.CreatedBy, rc.UpdatedBy = row.CreatedBy, row.UpdatedBy
	return rc
}

func (r *receiptRepository) Create(ctx context.Context, rc *receipt.Receipt) (err error) {
	span := startSpan(ctx, "receipt", "create", map[string]interface{}{"receipt_no": rc.ReceiptNo})
	defer func() { finish(span, err) }()

	_, err = r.db.GetQuerier(ctx).ExecContext(ctx, `
		INSERT INTO receipts (`+receiptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		rc.ID, rc.Seq, rc.ReceiptNo, rc.ReceiptDate, rc.ClientID, rc.InvoiceID, rc.InvoiceNo,
		rc.Amount, rc.AmountInWords, string(rc.PaymentType), rc.ChequeOrTxnNo, rc.Notes, rc.PDFURL, rc.PDFPath,
		rc.CreatedAt, rc.UpdatedAt, rc.CreatedBy, rc.UpdatedBy,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A receipt with this number already exists").
				WithReportableDetails(map[string]any{
					"receipt_no": rc.ReceiptNo,
					"seq":        rc.Seq,
					"constraint": postgres.ConstraintName(err),
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create receipt").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *receiptRepository) Get(ctx context.Context, id string) (*receipt.Receipt, error) {
	var row receiptRow
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, `SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHint("Receipt not found").
				WithReportableDetails(map[string]any{"receipt_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get receipt").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *receiptRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete receipt").
			Mark(ierr.ErrDatabase)
	}
	return requireAffected(result, ierr.NewError("receipt not found").
		WithHint("Receipt not found").
		WithReportableDetails(map[string]any{"receipt_id": id}).
		Mark(ierr.ErrNotFound))
}

func receiptConditions(filter *types.ReceiptFilter) *conditions {
	c := &conditions{}
	if filter == nil {
		return c
	}
	if filter.ClientID != "" {
		c.add("client_id", filter.ClientID)
	}
	if filter.InvoiceID != "" {
		c.add("invoice_id", filter.InvoiceID)
	}
	return c
}

func (r *receiptRepository) List(ctx context.Context, filter *types.ReceiptFilter) ([]*receipt.Receipt, error) {
	if filter == nil {
		filter = types.NewReceiptFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	c := receiptConditions(filter)
	query := `SELECT ` + receiptColumns + ` FROM receipts` + c.where() +
		` ORDER BY created_at DESC, seq DESC` + c.page(filter.GetLimit(), filter.GetOffset())

	var rows []receiptRow
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list receipts").
			Mark(ierr.ErrDatabase)
	}

	items := make([]*receipt.Receipt, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toDomain())
	}
	return items, nil
}

func (r *receiptRepository) Count(ctx context.Context, filter *types.ReceiptFilter) (int, error) {
	c := receiptConditions(filter)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, `SELECT COUNT(*) FROM receipts`+c.where(), c.args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count receipts").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}
