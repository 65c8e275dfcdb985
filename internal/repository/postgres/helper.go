package postgres

import (
	"context"
	"strconv"
	"strings"

	sentryService "github.com/agencyops/agencyops/internal/sentry"
	"github.com/getsentry/sentry-go"
)

const backend = "postgres"

func startSpan(ctx context.Context, repository, operation string, params map[string]interface{}) *sentry.Span {
	return sentryService.StartRepositorySpan(ctx, backend, repository, operation, params)
}

// finish records the outcome on the span and closes it
func finish(span *sentry.Span, err error) {
	if err != nil {
		sentryService.SetSpanError(span, err)
	} else {
		sentryService.SetSpanSuccess(span)
	}
	sentryService.FinishSpan(span)
}

// conditions collects AND-ed predicates with positional parameters
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(column string, value interface{}) {
	c.args = append(c.args, value)
	c.clauses = append(c.clauses, column+" = $"+strconv.Itoa(len(c.args)))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT and OFFSET placeholders and returns the suffix
func (c *conditions) page(limit, offset int) string {
	c.args = append(c.args, limit, offset)
	n := len(c.args)
	return " LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n)
}
