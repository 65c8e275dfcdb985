package middleware

import (
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/types"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

const fallbackMessage = "An unexpected error occurred"

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success   bool        `json:"success"`
	RequestID string      `json:"request_id,omitempty"`
	Error     ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler renders the last error a handler recorded with c.Error. The
// status comes from the sentinel the error is marked with. Server errors are
// reported to sentry.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		detail := ErrorDetail{
			Code:    ierr.CodeFromErr(err),
			Display: ierr.DisplayMessage(err, fallbackMessage),
		}
		if details := ierr.ReportableDetails(err); len(details) > 0 {
			detail.Details = details
		}

		status := ierr.HTTPStatusFromErr(err)
		if status >= 500 {
			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.CaptureException(err)
			}
		}
		c.JSON(status, ErrorResponse{
			Success:   false,
			RequestID: types.GetRequestID(c.Request.Context()),
			Error:     detail,
		})
	}
}
