package service

import (
	"github.com/agencyops/agencyops/internal/cache"
	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/receipt"
	"github.com/agencyops/agencyops/internal/domain/sequence"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	"github.com/agencyops/agencyops/internal/email"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/pdf"
	"github.com/agencyops/agencyops/internal/postgres"
	"github.com/agencyops/agencyops/internal/s3"
	sentryService "github.com/agencyops/agencyops/internal/sentry"
	"github.com/agencyops/agencyops/internal/storage"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger       *logger.Logger
	Config       *config.Configuration
	DB           postgres.IClient
	PDFGenerator pdf.Generator
	Storage      storage.Store
	Mailer       email.Mailer
	Cache        cache.Cache
	Sentry       *sentryService.Service

	// S3 is nil when mirroring is disabled
	S3 s3.Service

	// Repositories
	SequenceRepo  sequence.Repository
	SubEntityRepo subentity.Repository
	ClientRepo    client.Repository
	InvoiceRepo   invoice.Repository
	ReceiptRepo   receipt.Repository
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	pdfGenerator pdf.Generator,
	store storage.Store,
	mailer email.Mailer,
	cache cache.Cache,
	sentry *sentryService.Service,
	s3Service s3.Service,
	sequenceRepo sequence.Repository,
	subEntityRepo subentity.Repository,
	clientRepo client.Repository,
	invoiceRepo invoice.Repository,
	receiptRepo receipt.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:        logger,
		Config:        config,
		DB:            db,
		PDFGenerator:  pdfGenerator,
		Storage:       store,
		Mailer:        mailer,
		Cache:         cache,
		Sentry:        sentry,
		S3:            s3Service,
		SequenceRepo:  sequenceRepo,
		SubEntityRepo: subEntityRepo,
		ClientRepo:    clientRepo,
		InvoiceRepo:   invoiceRepo,
		ReceiptRepo:   receiptRepo,
	}
}
