package sentry

import (
	"context"
	"time"

	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/getsentry/sentry-go"
	"go.uber.org/fx"
)

const flushTimeout = 2 * time.Second

// Service reports errors and performance data. Every method is a no-op when
// sentry is disabled.
type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

func NewSentryService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterHooks initialises the sentry client on start and flushes queued
// events on stop
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !svc.Enabled() {
				svc.logger.Info("Sentry is disabled")
				return nil
			}
			return svc.init()
		},
		OnStop: func(ctx context.Context) error {
			if svc.Enabled() {
				svc.logger.Info("Flushing Sentry events before shutdown")
				sentry.Flush(flushTimeout)
			}
			return nil
		},
	})
}

func (s *Service) init() error {
	rate := s.cfg.Sentry.SampleRate
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              s.cfg.Sentry.DSN,
		Environment:      s.cfg.Sentry.Environment,
		EnableTracing:    true,
		TracesSampleRate: rate,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			// load balancer health probes are not worth tracing
			if ctx.Span.Name == "GET /health" {
				return 0.0
			}
			return rate
		}),
	})
	if err != nil {
		s.logger.Errorw("Failed to initialize Sentry", "error", err)
		return err
	}
	s.logger.Infow("Sentry initialized successfully",
		"environment", s.cfg.Sentry.Environment,
		"sample_rate", rate,
	)
	return nil
}

func (s *Service) Enabled() bool {
	return s.cfg.Sentry.Enabled
}

// hub prefers the request scoped hub so events carry its tags
func hub(ctx context.Context) *sentry.Hub {
	if h := sentry.GetHubFromContext(ctx); h != nil {
		return h
	}
	return sentry.CurrentHub()
}

func (s *Service) CaptureException(ctx context.Context, err error) {
	if !s.Enabled() || err == nil {
		return
	}
	hub(ctx).CaptureException(err)
}

// AddBreadcrumb records a step leading up to a later event, such as a number
// collision before an allocation gives up
func (s *Service) AddBreadcrumb(ctx context.Context, category, message string, data map[string]interface{}) {
	if !s.Enabled() {
		return
	}
	hub(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Level:    sentry.LevelWarning,
		Data:     data,
	}, nil)
}

// StartDBSpan starts a span for a store call inside the current transaction.
// Callers must pass the span to FinishSpan.
func (s *Service) StartDBSpan(ctx context.Context, operation string, params map[string]interface{}) (*sentry.Span, context.Context) {
	if !s.Enabled() {
		return nil, ctx
	}

	span := sentry.StartSpan(ctx, operation)
	span.Description = operation
	span.Op = "db." + string(s.cfg.Store.Backend)
	for k, v := range params {
		span.SetData(k, v)
	}
	return span, span.Context()
}

// StartTransaction starts a transaction for work such as document generation,
// attaching a hub to ctx when the caller has none
func (s *Service) StartTransaction(ctx context.Context, name string, options ...sentry.SpanOption) (*sentry.Span, context.Context) {
	if !s.Enabled() {
		return nil, ctx
	}

	if sentry.GetHubFromContext(ctx) == nil {
		ctx = sentry.SetHubOnContext(ctx, sentry.CurrentHub().Clone())
	}

	opts := append([]sentry.SpanOption{
		sentry.WithOpName(name),
		sentry.WithTransactionSource(sentry.SourceCustom),
	}, options...)

	transaction := sentry.StartTransaction(ctx, name, opts...)
	return transaction, transaction.Context()
}

// FinishSpan finishes span, ignoring nil spans from a disabled service
func FinishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}
