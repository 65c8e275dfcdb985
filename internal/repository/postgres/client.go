package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/agencyops/agencyops/internal/domain/client"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/postgres"
	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

type clientRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewClientRepository(db *postgres.DB, logger *logger.Logger) client.Repository {
	return &clientRepository{db: db, logger: logger}
}

type clientRow struct {
	ID             string         `db:"id"`
	ClientCode     string         `db:"client_code"`
	Name           string         `db:"name"`
	BusinessName   string         `db:"business_name"`
	Email          string         `db:"email"`
	Phone          string         `db:"phone"`
	Address        string         `db:"address"`
	SubEntityID    string         `db:"sub_entity_id"`
	SubEntityCodes pq.StringArray `db:"sub_entity_codes"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	CreatedBy      string         `db:"created_by"`
	UpdatedBy      string         `db:"updated_by"`
}

const clientColumns = `id, client_code, name, business_name, email, phone, address,
	sub_entity_id, sub_entity_codes, created_at, updated_at, created_by, updated_by`

func (row *clientRow) toDomain() *client.Client {
	c := &client.Client{
		ID:             row.ID,
		ClientCode:     row.ClientCode,
		Name:           row.Name,
		BusinessName:   row.BusinessName,
		Email:          row.Email,
		Phone:          row.Phone,
		Address:        row.Address,
		SubEntityID:    row.SubEntityID,
		SubEntityCodes: []string(row.SubEntityCodes),
	}
	c.CreatedAt, c.UpdatedAt = row.CreatedAt, row.UpdatedAt
	c.CreatedBy, c.UpdatedBy = row.CreatedBy, row.UpdatedBy
	return c
}

func (r *clientRepository) Create(ctx context.Context, c *client.Client) (err error) {
	span := startSpan(ctx, "client", "create", map[string]interface{}{"client_code": c.ClientCode})
	defer func() { finish(span, err) }()

	_, err = r.db.GetQuerier(ctx).ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.ClientCode, c.Name, c.BusinessName, c.Email, c.Phone, c.Address,
		c.SubEntityID, pq.StringArray(c.SubEntityCodes),
		c.CreatedAt, c.UpdatedAt, c.CreatedBy, c.UpdatedBy,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A client with this code already exists").
				WithReportableDetails(map[string]any{"client_code": c.ClientCode}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create client").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *clientRepository) Get(ctx context.Context, id string) (*client.Client, error) {
	return r.getOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, "client_id", id)
}

// GetByReference matches the client code first, then the email
func (r *clientRepository) GetByReference(ctx context.Context, ref string) (*client.Client, error) {
	return r.getOne(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE client_code = $1 OR LOWER(email) = LOWER($1)
		ORDER BY (client_code = $1) DESC, created_at ASC
		LIMIT 1`, "reference", ref)
}

func (r *clientRepository) getOne(ctx context.Context, query, key, value string) (*client.Client, error) {
	var row clientRow
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHint("Client not found").
				WithReportableDetails(map[string]any{key: value}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get client").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}
