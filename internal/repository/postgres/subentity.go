package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/agencyops/agencyops/internal/domain/subentity"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/postgres"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

type subEntityRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubEntityRepository(db *postgres.DB, logger *logger.Logger) subentity.Repository {
	return &subEntityRepository{db: db, logger: logger}
}

type subEntityRow struct {
	ID                  string          `db:"id"`
	Name                string          `db:"name"`
	Prefix              string          `db:"prefix"`
	TaxRate             decimal.Decimal `db:"tax_rate"`
	Tagline             string          `db:"tagline"`
	LogoPath            string          `db:"logo_path"`
	AddressLine1        string          `db:"address_line1"`
	AddressLine2        string          `db:"address_line2"`
	ContactEmail        string          `db:"contact_email"`
	TaxNumber           string          `db:"tax_number"`
	AuthorisedSignatory string          `db:"authorised_signatory"`
	BankDetails         []byte          `db:"bank_details"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
	CreatedBy           string          `db:"created_by"`
	UpdatedBy           string          `db:"updated_by"`
}

const subEntityColumns = `id, name, prefix, tax_rate, tagline, logo_path, address_line1, address_line2,
	contact_email, tax_number, authorised_signatory, bank_details,
	created_at, updated_at, created_by, updated_by`

func (row *subEntityRow) toDomain() (*subentity.SubEntity, error) {
	s := &subentity.SubEntity{
		ID:                  row.ID,
		Name:                row.Name,
		Prefix:              row.Prefix,
		TaxRate:             row.TaxRate,
		Tagline:             row.Tagline,
		LogoPath:            row.LogoPath,
		AddressLine1:        row.AddressLine1,
		AddressLine2:        row.AddressLine2,
		ContactEmail:        row.ContactEmail,
		TaxNumber:           row.TaxNumber,
		AuthorisedSignatory: row.AuthorisedSignatory,
	}
	s.CreatedAt, s.UpdatedAt = row.CreatedAt, row.UpdatedAt
	s.CreatedBy, s.UpdatedBy = row.CreatedBy, row.UpdatedBy

	if len(row.BankDetails) > 0 {
		if err := json.Unmarshal(row.BankDetails, &s.BankDetails); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored bank details are corrupt").
				Mark(ierr.ErrDatabase)
		}
	}
	return s, nil
}

func (r *subEntityRepository) Create(ctx context.Context, s *subentity.SubEntity) (err error) {
	span := startSpan(ctx, "sub_entity", "create", map[string]interface{}{"name": s.Name})
	defer func() { finish(span, err) }()

	bank, err := json.Marshal(s.BankDetails)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	_, err = r.db.GetQuerier(ctx).ExecContext(ctx, `
		INSERT INTO sub_entities (`+subEntityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		s.ID, s.Name, s.Prefix, s.TaxRate, s.Tagline, s.LogoPath, s.AddressLine1, s.AddressLine2,
		s.ContactEmail, s.TaxNumber, s.AuthorisedSignatory, bank,
		s.CreatedAt, s.UpdatedAt, s.CreatedBy, s.UpdatedBy,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A sub-entity with this name already exists").
				WithReportableDetails(map[string]any{"name": s.Name}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create sub-entity").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subEntityRepository) Get(ctx context.Context, id string) (*subentity.SubEntity, error) {
	var row subEntityRow
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row,
		`SELECT `+subEntityColumns+` FROM sub_entities WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Sub-entity %s not found", id).
				WithReportableDetails(map[string]any{"sub_entity_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get sub-entity").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain()
}

func (r *subEntityRepository) List(ctx context.Context) ([]*subentity.SubEntity, error) {
	var rows []subEntityRow
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows,
		`SELECT `+subEntityColumns+` FROM sub_entities ORDER BY name ASC`)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list sub-entities").
			Mark(ierr.ErrDatabase)
	}

	items := make([]*subentity.SubEntity, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}
