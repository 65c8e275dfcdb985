package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/repository"
	"github.com/agencyops/agencyops/internal/sentry"
)

func main() {
	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to store",
		"store_backend", cfg.Store.Backend,
		"sequence_backend", cfg.Sequence.Backend,
	)

	stores, err := repository.NewStores(cfg, logger, sentry.NewSentryService(cfg, logger))
	if err != nil {
		logger.Fatalw("Failed to initialise stores", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	defer func() {
		if err := stores.Close(ctx); err != nil {
			logger.Warnw("Failed to close stores", "error", err)
		}
	}()

	logger.Info("Running database migrations...")
	if err := stores.Migrate(ctx); err != nil {
		logger.Fatalw("Failed to create schema resources", "error", err)
	}
	logger.Info("Migration completed successfully")

	fmt.Println("Migration process completed")
}
