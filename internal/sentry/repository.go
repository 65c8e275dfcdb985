package sentry

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// StartRepositorySpan starts a child span for a repository call. It returns
// nil when the context carries no hub.
func StartRepositorySpan(ctx context.Context, backend, repository, operation string, params map[string]interface{}) *sentry.Span {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		return nil
	}

	name := "repository." + repository + "." + operation
	span := sentry.StartSpan(ctx, name)
	if span != nil {
		span.Description = name
		span.Op = "db." + backend

		span.SetData("repository", repository)
		span.SetData("operation", operation)
		for k, v := range params {
			span.SetData(k, v)
		}
	}

	return span
}

// SetSpanError marks a span as failed and adds error information
func SetSpanError(span *sentry.Span, err error) {
	if span == nil || err == nil {
		return
	}

	span.Status = sentry.SpanStatusInternalError
	span.SetData("error", err.Error())
}

// SetSpanSuccess marks a span as successful
func SetSpanSuccess(span *sentry.Span) {
	if span != nil {
		span.Status = sentry.SpanStatusOK
	}
}
