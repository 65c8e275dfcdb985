package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/agencyops/agencyops/internal/api"
	v1 "github.com/agencyops/agencyops/internal/api/v1"
	"github.com/agencyops/agencyops/internal/cache"
	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/email"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/pdf"
	"github.com/agencyops/agencyops/internal/pdfgen"
	"github.com/agencyops/agencyops/internal/repository"
	"github.com/agencyops/agencyops/internal/s3"
	"github.com/agencyops/agencyops/internal/sentry"
	"github.com/agencyops/agencyops/internal/service"
	"github.com/agencyops/agencyops/internal/storage"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/agencyops/agencyops/internal/validator"
	"go.uber.org/fx"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// Cache
			cache.Initialize,

			// Documents
			storage.NewLocalStore,
			s3.NewService,
			pdfgen.NewChromedpRenderer,
			pdf.NewGenerator,

			// Email
			email.NewEmailClient,
			email.NewEmail,
		),
	)

	// Repositories for the configured store backend
	opts = append(opts, repository.Module())

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewSubEntityService,
			service.NewClientService,
			service.NewInvoiceService,
			service.NewReceiptService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	store storage.Store,
	invoiceService service.InvoiceService,
	receiptService service.ReceiptService,
	clientService service.ClientService,
	subEntityService service.SubEntityService,
) api.Handlers {
	return api.Handlers{
		Health:    v1.NewHealthHandler(store, cfg, logger),
		Invoice:   v1.NewInvoiceHandler(invoiceService, logger),
		Receipt:   v1.NewReceiptHandler(receiptService, logger),
		Client:    v1.NewClientHandler(clientService, logger),
		SubEntity: v1.NewSubEntityHandler(subEntityService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}
