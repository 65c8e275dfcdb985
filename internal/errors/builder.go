package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// detailsPrefix marks safe-detail payloads written by WithReportableDetails
const detailsPrefix = "__json__:"

// ErrorBuilder assembles an error in a fluent chain. It is not an error
// itself: Mark ends the chain and returns the built error.
type ErrorBuilder struct {
	err error
}

func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: errors.Newf(format, args...)}
}

// WithError starts a chain from an existing error, keeping its stack
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithMessagef prefixes the internal message. It is never shown to API
// callers.
func (b *ErrorBuilder) WithMessagef(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithMessagef(b.err, format, args...)
	return b
}

// WithHint sets the message shown to API callers
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithReportableDetails attaches structured details that are safe to return
// to callers and to send to sentry
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	marshaled, err := json.Marshal(details)
	if err != nil {
		return b
	}
	b.err = errors.WithSafeDetails(b.err, detailsPrefix+"%s", errors.Safe(string(marshaled)))
	return b
}

// Mark tags the error with a sentinel and ends the chain
func (b *ErrorBuilder) Mark(reference error) error {
	b.err = errors.Mark(b.err, reference)
	return b.err
}

// DisplayMessage returns the outermost non-empty hint of err, or fallback
func DisplayMessage(err error, fallback string) string {
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return fallback
}

// ReportableDetails merges every details map attached along the chain. Keys
// set closer to the root cause win.
func ReportableDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			raw, ok := strings.CutPrefix(payload, detailsPrefix)
			if !ok {
				continue
			}
			var chunk map[string]any
			if err := json.Unmarshal([]byte(raw), &chunk); err != nil {
				continue
			}
			for k, v := range chunk {
				details[k] = v
			}
		}
	}
	return details
}
