package mongodb

import (
	"context"
	"time"

	"github.com/agencyops/agencyops/internal/config"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names
const (
	ColCounters    = "counters"
	ColSubEntities = "sub_entities"
	ColClients     = "clients"
	ColInvoices    = "invoices"
	ColReceipts    = "receipts"
)

// Client holds the connection and the application database
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logger.Logger
}

func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	c, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not connect to mongo").
			Mark(ierr.ErrDatabase)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, ierr.WithError(err).
			WithHint("Mongo is not reachable").
			Mark(ierr.ErrDatabase)
	}

	log.Infow("connected to mongo", "database", cfg.Mongo.Database)
	return &Client{client: c, db: c.Database(cfg.Mongo.Database), logger: log}, nil
}

// Collection returns a handle to a named collection
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// WithTx runs fn directly. Each mongo write used by the repositories is a
// single document operation and atomic on its own.
func (c *Client) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Migrate creates the unique and lookup indexes for every collection
func (c *Client) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if _, err := c.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return ierr.WithError(err).
				WithHintf("Could not create indexes on %s", col).
				Mark(ierr.ErrDatabase)
		}
	}
	c.logger.Infow("mongo indexes are up to date")
	return nil
}

func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		ColSubEntities: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ColClients: {
			{
				Keys: bson.D{{Key: "client_code", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"client_code": bson.M{"$gt": ""}}),
			},
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		ColInvoices: {
			{Keys: bson.D{{Key: "invoice_no", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "sub_entity_id", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		ColReceipts: {
			{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "receipt_no", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "invoice_id", Value: 1}}},
		},
	}
}
