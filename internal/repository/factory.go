package repository

import (
	"context"

	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/receipt"
	"github.com/agencyops/agencyops/internal/domain/sequence"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	"github.com/agencyops/agencyops/internal/dynamodb"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/mongodb"
	"github.com/agencyops/agencyops/internal/postgres"
	dynamoRepo "github.com/agencyops/agencyops/internal/repository/dynamodb"
	mongoRepo "github.com/agencyops/agencyops/internal/repository/mongo"
	postgresRepo "github.com/agencyops/agencyops/internal/repository/postgres"
	sentryService "github.com/agencyops/agencyops/internal/sentry"
	"github.com/agencyops/agencyops/internal/types"
	"go.uber.org/fx"
)

// Stores is the set of repositories backed by the configured store
type Stores struct {
	Sequence  sequence.Repository
	SubEntity subentity.Repository
	Client    client.Repository
	Invoice   invoice.Repository
	Receipt   receipt.Repository
	Tx        postgres.IClient

	migrations []func(context.Context) error
	closers    []func(context.Context) error
}

// NewStores connects to the configured backends and builds the repositories
func NewStores(cfg *config.Configuration, log *logger.Logger, sentry *sentryService.Service) (*Stores, error) {
	s := &Stores{}

	switch cfg.Store.Backend {
	case types.StoreBackendPostgres:
		db, err := postgres.NewDB(cfg, log)
		if err != nil {
			return nil, err
		}
		s.SubEntity = postgresRepo.NewSubEntityRepository(db, log)
		s.Client = postgresRepo.NewClientRepository(db, log)
		s.Invoice = postgresRepo.NewInvoiceRepository(db, log)
		s.Receipt = postgresRepo.NewReceiptRepository(db, log)
		s.Sequence = postgresRepo.NewSequenceRepository(db, log)
		s.Tx = postgres.NewSentryClient(db, sentry, log)
		s.migrations = append(s.migrations, db.Migrate)
		s.closers = append(s.closers, func(context.Context) error {
			db.Close()
			return nil
		})

	case types.StoreBackendMongo:
		mc, err := mongodb.NewClient(cfg, log)
		if err != nil {
			return nil, err
		}
		store := mongoRepo.New(mc, log)
		s.SubEntity = mongoRepo.NewSubEntityRepository(store)
		s.Client = mongoRepo.NewClientRepository(store)
		s.Invoice = mongoRepo.NewInvoiceRepository(store)
		s.Receipt = mongoRepo.NewReceiptRepository(store)
		s.Sequence = mongoRepo.NewSequenceRepository(store)
		s.Tx = postgres.NewSentryClient(mc, sentry, log)
		s.migrations = append(s.migrations, mc.Migrate)
		s.closers = append(s.closers, mc.Close)

	default:
		return nil, ierr.NewErrorf("unsupported store backend %q", cfg.Store.Backend).
			WithHint("store.backend must be postgres or mongo").
			Mark(ierr.ErrValidation)
	}

	if cfg.Sequence.Backend == types.SequenceBackendDynamoDB {
		dc, err := dynamodb.NewClient(cfg, log)
		if err != nil {
			return nil, err
		}
		if dc == nil {
			return nil, ierr.NewError("dynamodb sequence backend selected but dynamodb is not in use").
				WithHint("Set dynamodb.in_use to true").
				Mark(ierr.ErrValidation)
		}
		s.Sequence = dynamoRepo.NewSequenceRepository(dc, log)
		s.migrations = append(s.migrations, dc.EnsureCounterTable)
	}

	log.Infow("repositories initialised",
		"store_backend", cfg.Store.Backend,
		"sequence_backend", cfg.Sequence.Backend,
	)
	return s, nil
}

// Migrate prepares tables, indexes and counter tables
func (s *Stores) Migrate(ctx context.Context) error {
	for _, m := range s.migrations {
		if err := m(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every backend connection
func (s *Stores) Close(ctx context.Context) error {
	var first error
	for _, c := range s.closers {
		if err := c(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Module exposes each repository to the fx graph
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewStores,
			func(s *Stores) sequence.Repository { return s.Sequence },
			func(s *Stores) subentity.Repository { return s.SubEntity },
			func(s *Stores) client.Repository { return s.Client },
			func(s *Stores) invoice.Repository { return s.Invoice },
			func(s *Stores) receipt.Repository { return s.Receipt },
			func(s *Stores) postgres.IClient { return s.Tx },
		),
		fx.Invoke(func(lc fx.Lifecycle, s *Stores) {
			lc.Append(fx.Hook{OnStop: s.Close})
		}),
	)
}
