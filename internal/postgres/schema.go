package postgres

import (
	"context"

	ierr "github.com/agencyops/agencyops/internal/errors"
)

// schema is applied in order by Migrate. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS counters (
		name       TEXT PRIMARY KEY,
		value      BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sub_entities (
		id                   TEXT PRIMARY KEY,
		name                 TEXT NOT NULL UNIQUE,
		prefix               TEXT NOT NULL DEFAULT '',
		tax_rate             NUMERIC(5, 2) NOT NULL DEFAULT 18,
		tagline              TEXT NOT NULL DEFAULT '',
		logo_path            TEXT NOT NULL DEFAULT '',
		address_line1        TEXT NOT NULL DEFAULT '',
		address_line2        TEXT NOT NULL DEFAULT '',
		contact_email        TEXT NOT NULL DEFAULT '',
		tax_number           TEXT NOT NULL DEFAULT '',
		authorised_signatory TEXT NOT NULL DEFAULT '',
		bank_details         JSONB NOT NULL DEFAULT '{}',
		created_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL,
		created_by           TEXT NOT NULL DEFAULT '',
		updated_by           TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id               TEXT PRIMARY KEY,
		client_code      TEXT NOT NULL DEFAULT '',
		name             TEXT NOT NULL,
		business_name    TEXT NOT NULL DEFAULT '',
		email            TEXT NOT NULL DEFAULT '',
		phone            TEXT NOT NULL DEFAULT '',
		address          TEXT NOT NULL DEFAULT '',
		sub_entity_id    TEXT NOT NULL DEFAULT '',
		sub_entity_codes TEXT[] NOT NULL DEFAULT '{}',
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		created_by       TEXT NOT NULL DEFAULT '',
		updated_by       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_client_code
		ON clients (client_code) WHERE client_code <> ''`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id            TEXT PRIMARY KEY,
		invoice_no    TEXT NOT NULL,
		invoice_base  TEXT NOT NULL,
		client_id     TEXT NOT NULL REFERENCES clients (id),
		sub_entity_id TEXT NOT NULL REFERENCES sub_entities (id),
		line_items    JSONB NOT NULL DEFAULT '[]',
		subtotal      NUMERIC(20, 2) NOT NULL,
		tax_rate      NUMERIC(5, 2) NOT NULL,
		tax_amount    NUMERIC(20, 2) NOT NULL,
		total_amount  NUMERIC(20, 2) NOT NULL,
		invoice_date  TIMESTAMPTZ NOT NULL,
		due_date      TIMESTAMPTZ,
		notes         TEXT NOT NULL DEFAULT '',
		pdf_url       TEXT NOT NULL DEFAULT '',
		pdf_path      TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'Pending',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		created_by    TEXT NOT NULL DEFAULT '',
		updated_by    TEXT NOT NULL DEFAULT '',
		CONSTRAINT invoices_invoice_no_key UNIQUE (invoice_no)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_client_sub_entity
		ON invoices (client_id, sub_entity_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS receipts (
		id               TEXT PRIMARY KEY,
		seq              BIGINT NOT NULL,
		receipt_no       TEXT NOT NULL,
		receipt_date     TIMESTAMPTZ NOT NULL,
		client_id        TEXT NOT NULL DEFAULT '',
		invoice_id       TEXT NOT NULL,
		invoice_no       TEXT NOT NULL,
		amount           NUMERIC(20, 2) NOT NULL,
		amount_in_words  TEXT NOT NULL DEFAULT '',
		payment_type     TEXT NOT NULL,
		cheque_or_txn_no TEXT NOT NULL DEFAULT '',
		notes            TEXT NOT NULL DEFAULT '',
		pdf_url          TEXT NOT NULL DEFAULT '',
		pdf_path         TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		created_by       TEXT NOT NULL DEFAULT '',
		updated_by       TEXT NOT NULL DEFAULT '',
		CONSTRAINT receipts_seq_key UNIQUE (seq),
		CONSTRAINT receipts_receipt_no_key UNIQUE (receipt_no)
	)`,
}

// Migrate creates the tables and indexes if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	return db.WithTx(ctx, func(ctx context.Context) error {
		q := db.GetQuerier(ctx)
		for i, stmt := range schema {
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return ierr.WithError(err).
					WithHintf("Migration step %d failed", i+1).
					Mark(ierr.ErrDatabase)
			}
		}
		db.logger.Infow("postgres schema is up to date", "statements", len(schema))
		return nil
	})
}
