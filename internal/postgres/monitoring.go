package postgres

import (
	"context"

	"github.com/agencyops/agencyops/internal/logger"
	sentryService "github.com/agencyops/agencyops/internal/sentry"
	"github.com/agencyops/agencyops/internal/types"
)

// IClient is the transaction surface the services depend on. Both the
// postgres DB and the mongo client implement it.
type IClient interface {
	// WithTx runs fn in a transaction carried by the context. Repositories
	// called with that context join it.
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

// SentryClient records a span around every transaction of the wrapped client
type SentryClient struct {
	client IClient
	sentry *sentryService.Service
	logger *logger.Logger
}

func NewSentryClient(client IClient, sentry *sentryService.Service, logger *logger.Logger) IClient {
	return &SentryClient{
		client: client,
		sentry: sentry,
		logger: logger,
	}
}

func (c *SentryClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	span, spanCtx := c.sentry.StartDBSpan(ctx, "store.transaction", map[string]interface{}{
		"request_id": types.GetRequestID(ctx),
	})
	defer sentryService.FinishSpan(span)

	err := c.client.WithTx(spanCtx, fn)
	if err != nil {
		sentryService.SetSpanError(span, err)
	} else {
		sentryService.SetSpanSuccess(span)
	}
	return err
}

var _ IClient = (*DB)(nil)
