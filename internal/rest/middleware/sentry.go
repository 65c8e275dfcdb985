package middleware

import (
	"time"

	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/types"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware attaches a sentry hub to each request and tags it with the
// request id. It is a no-op when sentry is disabled.
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
}

// SentryTags copies request scoped values onto the hub. It must run after
// SentryMiddleware and RequestIDMiddleware.
func SentryTags(c *gin.Context) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.Scope().SetTag("request_id", types.GetRequestID(c.Request.Context()))
		hub.Scope().SetTag("route", c.FullPath())
	}
	c.Next()
}
