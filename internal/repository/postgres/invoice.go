package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/agencyops/agencyops/internal/domain/invoice"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/postgres"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

type invoiceRow struct {
	ID          string          `db:"id"`
	InvoiceNo   string          `db:"invoice_no"`
	InvoiceBase string          `db:"invoice_base"`
	ClientID    string          `db:"client_id"`
	SubEntityID string          `db:"sub_entity_id"`
	LineItems   []byte          `db:"line_items"`
	Subtotal    decimal.Decimal `db:"subtotal"`
	TaxRate     decimal.Decimal `db:"tax_rate"`
	TaxAmount   decimal.Decimal `db:"tax_amount"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	InvoiceDate time.Time       `db:"invoice_date"`
	DueDate     sql.NullTime    `db:"due_date"`
	Notes       string          `db:"notes"`
	PDFURL      string          `db:"pdf_url"`
	PDFPath     string          `db:"pdf_path"`
	Status      string          `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	CreatedBy   string          `db:"created_by"`
	UpdatedBy   string          `db:"updated_by"`
}

const invoiceColumns = `id, invoice_no, invoice_base, client_id, sub_entity_id, line_items,
	subtotal, tax_rate, tax_amount, total_amount, invoice_date, due_date, notes,
	pdf_url, pdf_path, status, created_at, updated_at, created_by, updated_by`

func (row *invoiceRow) toDomain() (*invoice.Invoice, error) {
	inv := &invoice.Invoice{
		ID:          row.ID,
		InvoiceNo:   row.InvoiceNo,
		InvoiceBase: row.InvoiceBase,
		ClientID:    row.ClientID,
		SubEntityID: row.SubEntityID,
		Subtotal:    row.Subtotal,
		TaxRate:     row.TaxRate,
		TaxAmount:   row.TaxAmount,
		TotalAmount: row.TotalAmount,
		InvoiceDate: row.InvoiceDate,
		Notes:       row.Notes,
		PDFURL:      row.PDFURL,
		PDFPath:     row.PDFPath,
		Status:      types.InvoiceStatus(row.Status),
	}
	if row.DueDate.Valid {
		due := row.DueDate.Time
		inv.DueDate = &due
	}
	inv.CreatedAt, inv.UpdatedAt = row.CreatedAt, row.UpdatedAt
	inv.CreatedBy, inv.UpdatedBy = row.CreatedBy, row.UpdatedBy

	if len(row.LineItems) > 0 {
		if err := json.Unmarshal(row.LineItems, &inv.LineItems); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored line items are corrupt").
				WithReportableDetails(map[string]any{"invoice_id": row.ID}).
				Mark(ierr.ErrDatabase)
		}
	}
	return inv, nil
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) (err error) {
	span := startSpan(ctx, "invoice", "create", map[string]interface{}{
		"invoice_no": inv.InvoiceNo,
	})
	defer func() { finish(span, err) }()

	items, err := json.Marshal(inv.LineItems)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Line items could not be encoded").
			Mark(ierr.ErrValidation)
	}

	var due sql.NullTime
	if inv.DueDate != nil {
		due = sql.NullTime{Time: *inv.DueDate, Valid: true}
	}

	_, err = r.db.GetQuerier(ctx).ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		inv.ID, inv.InvoiceNo, inv.InvoiceBase, inv.ClientID, inv.SubEntityID, items,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.TotalAmount, inv.InvoiceDate, due, inv.Notes,
		inv.PDFURL, inv.PDFPath, string(inv.Status),
		inv.CreatedAt, inv.UpdatedAt, inv.CreatedBy, inv.UpdatedBy,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return invoice.NewDuplicateNumberError(err, inv.InvoiceNo)
		}
		r.logger.Errorw("failed to create invoice", "invoice_no", inv.InvoiceNo, "error", err)
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, "invoice_id", id)
}

func (r *invoiceRepository) GetByNumber(ctx context.Context, invoiceNo string) (*invoice.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_no = $1`, "invoice_no", invoiceNo)
}

func (r *invoiceRepository) getOne(ctx context.Context, query, key, value string) (*invoice.Invoice, error) {
	var row invoiceRow
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.NewNotFoundError(key, value)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain()
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, `
		UPDATE invoices
		SET status = $1, pdf_url = $2, pdf_path = $3, notes = $4, updated_at = $5, updated_by = $6
		WHERE id = $7`,
		string(inv.Status), inv.PDFURL, inv.PDFPath, inv.Notes, inv.UpdatedAt, inv.UpdatedBy, inv.ID,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	return requireAffected(result, invoice.NewNotFoundError("invoice_id", inv.ID))
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete invoice").
			Mark(ierr.ErrDatabase)
	}
	return requireAffected(result, invoice.NewNotFoundError("invoice_id", id))
}

func invoiceConditions(filter *types.InvoiceFilter) *conditions {
	c := &conditions{}
	if filter == nil {
		return c
	}
	if filter.ClientID != "" {
		c.add("client_id", filter.ClientID)
	}
	if filter.SubEntityID != "" {
		c.add("sub_entity_id", filter.SubEntityID)
	}
	if filter.Status != "" {
		c.add("status", string(filter.Status))
	}
	return c
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	c := invoiceConditions(filter)
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + c.where() +
		` ORDER BY created_at DESC, id DESC` + c.page(filter.GetLimit(), filter.GetOffset())

	var rows []invoiceRow
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	items := make([]*invoice.Invoice, 0, len(rows))
	for i := range rows {
		inv, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	return items, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	c := invoiceConditions(filter)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, `SELECT COUNT(*) FROM invoices`+c.where(), c.args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *invoiceRepository) ListNumbersForPair(ctx context.Context, clientID, subEntityID string) (entries []invoice.NumberEntry, err error) {
	span := startSpan(ctx, "invoice", "list_numbers_for_pair", map[string]interface{}{
		"client_id":     clientID,
		"sub_entity_id": subEntityID,
	})
	defer func() { finish(span, err) }()

	err = r.db.GetQuerier(ctx).SelectContext(ctx, &entries, `
		SELECT invoice_no, created_at FROM invoices
		WHERE client_id = $1 AND sub_entity_id = $2
		ORDER BY created_at ASC, invoice_no ASC`,
		clientID, subEntityID,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load invoice history").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
