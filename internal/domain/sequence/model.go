package sequence

import (
	"strings"
	"time"

	ierr "github.com/agencyops/agencyops/internal/errors"
)

// Counter is a named, monotonically increasing integer. It is created lazily
// on first use and never deleted.
type Counter struct {
	Name      string    `json:"name" db:"name"`
	Value     int64     `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// KeyReceipt is the global receipt sequence
const KeyReceipt = "receiptSeq"

// InvoiceKey is the per sub-entity counter used to mint fresh invoice bases
func InvoiceKey(subEntityID string) string {
	return "subentity:" + subEntityID + ":invoice"
}

// ClientKey is the per sub-entity counter used to mint client codes
func ClientKey(subEntityID string) string {
	return "subentity:" + subEntityID + ":client"
}

// ValidateKey rejects blank counter names
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ierr.NewError("counter key is required").
			WithHint("Counter key must not be empty").
			Mark(ierr.ErrValidation)
	}
	return nil
}
