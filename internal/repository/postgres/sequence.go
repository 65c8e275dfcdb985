package postgres

import (
	"context"
	"database/sql"

	"github.com/agencyops/agencyops/internal/domain/sequence"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/postgres"
	"github.com/cockroachdb/errors"
)

type sequenceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewSequenceRepository creates a counter store over the counters table
func NewSequenceRepository(db *postgres.DB, logger *logger.Logger) sequence.Repository {
	return &sequenceRepository{db: db, logger: logger}
}

const nextValueQuery = `
	INSERT INTO counters (name, value, created_at, updated_at)
	VALUES ($1, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT (name) DO UPDATE
	SET value = counters.value + 1,
		updated_at = CURRENT_TIMESTAMP
	RETURNING value`

func (r *sequenceRepository) Next(ctx context.Context, key string) (value int64, err error) {
	if err := sequence.ValidateKey(key); err != nil {
		return 0, err
	}

	span := startSpan(ctx, "counter", "next", map[string]interface{}{"key": key})
	defer func() { finish(span, err) }()

	if err = r.db.GetQuerier(ctx).GetContext(ctx, &value, nextValueQuery, key); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Counter increment failed").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrDatabase)
	}

	r.logger.Debugw("allocated counter value", "key", key, "value", value)
	return value, nil
}

func (r *sequenceRepository) Current(ctx context.Context, key string) (int64, error) {
	if err := sequence.ValidateKey(key); err != nil {
		return 0, err
	}

	var value int64
	err := r.db.GetQuerier(ctx).GetContext(ctx, &value, `SELECT value FROM counters WHERE name = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Counter lookup failed").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrDatabase)
	}
	return value, nil
}
