package sentry

import (
	"context"
	"errors"
	"testing"

	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestDisabledServiceIsInert(t *testing.T) {
	svc := NewSentryService(config.GetDefaultConfig(), logger.NewNoopLogger())
	ctx := context.Background()
	assert.False(t, svc.Enabled())

	svc.CaptureException(ctx, errors.New("boom"))
	svc.AddBreadcrumb(ctx, "invoice", "number collision", map[string]interface{}{"invoice_no": "AGH-001"})

	span, spanCtx := svc.StartDBSpan(ctx, "invoice.create", nil)
	assert.Nil(t, span)
	assert.Equal(t, ctx, spanCtx)
	FinishSpan(span)

	tx, txCtx := svc.StartTransaction(ctx, "invoice.generate")
	assert.Nil(t, tx)
	assert.Equal(t, ctx, txCtx)
}

func TestStartRepositorySpanWithoutHub(t *testing.T) {
	span := StartRepositorySpan(context.Background(), "postgres", "invoice", "create", nil)
	assert.Nil(t, span)

	// nil spans are accepted everywhere
	SetSpanError(span, errors.New("boom"))
	SetSpanSuccess(span)
	FinishSpan(span)
}
