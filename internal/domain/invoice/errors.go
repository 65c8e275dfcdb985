package invoice

import (
	ierr "github.com/agencyops/agencyops/internal/errors"
)

// NewNotFoundError reports a missing invoice
func NewNotFoundError(key string, value any) error {
	return ierr.NewError("invoice not found").
		WithHint("Invoice not found").
		WithReportableDetails(map[string]any{
			key: value,
		}).
		Mark(ierr.ErrNotFound)
}

// NewDuplicateNumberError reports a collision on the unique invoice number
func NewDuplicateNumberError(err error, invoiceNo string) error {
	return ierr.WithError(err).
		WithHint("An invoice with this number already exists").
		WithReportableDetails(map[string]any{
			"invoice_no": invoiceNo,
		}).
		Mark(ierr.ErrAlreadyExists)
}
