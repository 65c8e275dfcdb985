package testutil

import (
	"context"
	"time"

	"github.com/agencyops/agencyops/internal/cache"
	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/logger"
	sentryService "github.com/agencyops/agencyops/internal/sentry"
	"github.com/agencyops/agencyops/internal/storage"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/agencyops/agencyops/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	SequenceRepo  *InMemorySequenceStore
	SubEntityRepo *InMemorySubEntityStore
	ClientRepo    *InMemoryClientStore
	InvoiceRepo   *InMemoryInvoiceStore
	ReceiptRepo   *InMemoryReceiptStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	stores       Stores
	db           *MockPostgresClient
	logger       *logger.Logger
	config       *config.Configuration
	now          time.Time
	pdfGenerator *MockPDFGenerator
	mailer       *MockMailer
	storage      storage.Store
	cache        cache.Cache
	sentry       *sentryService.Service
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Invoice.PublicBaseURL = "http://localhost:8080"

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.sentry = sentryService.NewSentryService(cfg, s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SequenceRepo:  NewInMemorySequenceStore(),
		SubEntityRepo: NewInMemorySubEntityStore(),
		ClientRepo:    NewInMemoryClientStore(),
		InvoiceRepo:   NewInMemoryInvoiceStore(),
		ReceiptRepo:   NewInMemoryReceiptStore(),
	}

	// every test gets its own document folder
	s.config.Storage.RootDir = s.T().TempDir()
	store, err := storage.NewLocalStore(s.config)
	if err != nil {
		s.T().Fatalf("failed to create document store: %v", err)
	}
	s.storage = store

	s.db = NewMockPostgresClient(s.logger)
	s.pdfGenerator = NewMockPDFGenerator().StubRendering()
	s.mailer = NewMockMailer().StubDelivery()
	s.cache = cache.NewInMemoryCache(s.config)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.SequenceRepo.Clear()
	s.stores.SubEntityRepo.Clear()
	s.stores.ClientRepo.Clear()
	s.stores.InvoiceRepo.Clear()
	s.stores.ReceiptRepo.Clear()
	s.cache = cache.NewInMemoryCache(s.config)
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetPDFGenerator returns the test PDF generator
func (s *BaseServiceTestSuite) GetPDFGenerator() *MockPDFGenerator {
	return s.pdfGenerator
}

// SetPDFGenerator swaps the generator, e.g. for one that fails
func (s *BaseServiceTestSuite) SetPDFGenerator(g *MockPDFGenerator) {
	s.pdfGenerator = g
}

func (s *BaseServiceTestSuite) GetMailer() *MockMailer {
	return s.mailer
}

// GetStorage returns a document store rooted in a per-test temp dir
func (s *BaseServiceTestSuite) GetStorage() storage.Store {
	return s.storage
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetSentry() *sentryService.Service {
	return s.sentry
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}

// SetMailer swaps the mailer, e.g. for one that fails
func (s *BaseServiceTestSuite) SetMailer(m *MockMailer) {
	s.mailer = m
}
