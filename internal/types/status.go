package types

import (
	"strings"

	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus is the settlement state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "Pending"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusPaid,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentType is how a receipt was settled
type PaymentType string

const (
	PaymentTypeCash   PaymentType = "Cash"
	PaymentTypeOnline PaymentType = "Online"
	PaymentTypeCheque PaymentType = "Cheque"
)

// NormalizePaymentType accepts any casing ("cash", "ONLINE") and returns the
// canonical value. Empty input defaults to cash.
func NormalizePaymentType(raw string) (PaymentType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PaymentTypeCash, nil
	}
	for _, pt := range []PaymentType{PaymentTypeCash, PaymentTypeOnline, PaymentTypeCheque} {
		if strings.EqualFold(raw, string(pt)) {
			return pt, nil
		}
	}
	return "", ierr.NewError("invalid payment type").
		WithHintf("Payment type must be one of %s, %s or %s", PaymentTypeCash, PaymentTypeOnline, PaymentTypeCheque).
		WithReportableDetails(map[string]any{
			"payment_type": raw,
		}).
		Mark(ierr.ErrValidation)
}
