package mongo

import (
	"context"
	"time"

	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/receipt"
	"github.com/agencyops/agencyops/internal/domain/sequence"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/mongodb"
	sentryService "github.com/agencyops/agencyops/internal/sentry"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store implements every repository over a single mongo database
type Store struct {
	client *mongodb.Client
	logger *logger.Logger
}

// compile-time interface checks
var (
	_ sequence.Repository  = (*Store)(nil)
	_ subentity.Repository = (*SubEntityStore)(nil)
	_ client.Repository    = (*ClientStore)(nil)
	_ invoice.Repository   = (*InvoiceStore)(nil)
	_ receipt.Repository   = (*ReceiptStore)(nil)
)

func New(c *mongodb.Client, logger *logger.Logger) *Store {
	return &Store{client: c, logger: logger}
}

func (s *Store) col(name string) *mongo.Collection {
	return s.client.Collection(name)
}

// ==================== Counters ====================

// NewSequenceRepository returns the counter store
func NewSequenceRepository(s *Store) sequence.Repository {
	return s
}

// Next upserts and increments in a single FindOneAndUpdate
func (s *Store) Next(ctx context.Context, key string) (int64, error) {
	if err := sequence.ValidateKey(key); err != nil {
		return 0, err
	}

	span := sentryService.StartRepositorySpan(ctx, "mongo", "counter", "next", map[string]interface{}{"key": key})
	defer sentryService.FinishSpan(span)

	m, err := incrementCounter(func() (counterModel, error) {
		var m counterModel
		err := s.col(mongodb.ColCounters).FindOneAndUpdate(ctx,
			bson.M{"_id": key},
			counterUpdate(time.Now().UTC()),
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&m)
		return m, err
	})
	if err != nil {
		sentryService.SetSpanError(span, err)
		return 0, ierr.WithError(err).
			WithHint("Counter increment failed").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrDatabase)
	}

	sentryService.SetSpanSuccess(span)
	s.logger.Debugw("allocated counter value", "key", key, "value", m.Value)
	return m.Value, nil
}

// incrementCounter runs one upsert-increment. Two concurrent upserts of a
// missing counter can race on the _id index; the loser retries once and then
// finds the document.
func incrementCounter(upsert func() (counterModel, error)) (counterModel, error) {
	var (
		m   counterModel
		err error
	)
	for attempt := 0; attempt < 2; attempt++ {
		m, err = upsert()
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	return m, err
}

func counterUpdate(now time.Time) bson.M {
	return bson.M{
		"$inc":         bson.M{"value": 1},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
}

func (s *Store) Current(ctx context.Context, key string) (int64, error) {
	if err := sequence.ValidateKey(key); err != nil {
		return 0, err
	}

	var m counterModel
	err := s.col(mongodb.ColCounters).FindOne(ctx, bson.M{"_id": key}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Counter lookup failed").
			Mark(ierr.ErrDatabase)
	}
	return m.Value, nil
}

// ==================== Helpers ====================

func wrapWriteErr(err error, hint string, details map[string]any) error {
	if mongo.IsDuplicateKeyError(err) {
		return ierr.WithError(err).
			WithHint(hint).
			WithReportableDetails(details).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithHint("Database write failed").
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}

func findOne[M any](ctx context.Context, col *mongo.Collection, filter bson.M, notFound func() error) (*M, error) {
	var m M
	if err := col.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound()
		}
		return nil, ierr.WithError(err).
			WithHint("Database read failed").
			Mark(ierr.ErrDatabase)
	}
	return &m, nil
}

func findMany[M any](ctx context.Context, col *mongo.Collection, filter bson.M, opts *options.FindOptionsBuilder) ([]M, error) {
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Database read failed").
			Mark(ierr.ErrDatabase)
	}
	defer cursor.Close(ctx)

	var out []M
	if err := cursor.All(ctx, &out); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Database read failed").
			Mark(ierr.ErrDatabase)
	}
	return out, nil
}

func pageOptions(q *types.QueryFilter, sort bson.D) *options.FindOptionsBuilder {
	if q == nil {
		q = types.NewDefaultQueryFilter()
	}
	return options.Find().
		SetSort(sort).
		SetLimit(int64(q.GetLimit())).
		SetSkip(int64(q.GetOffset()))
}

func count(ctx context.Context, col *mongo.Collection, filter bson.M) (int, error) {
	n, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Database count failed").
			Mark(ierr.ErrDatabase)
	}
	return int(n), nil
}
