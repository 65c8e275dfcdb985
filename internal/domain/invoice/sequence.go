package invoice

import (
	"time"
)

// NumberEntry is the projection of an invoice used for number allocation
type NumberEntry struct {
	InvoiceNo string    `json:"invoice_no" db:"invoice_no"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// InvoiceNumber is the outcome of a single allocation
type InvoiceNumber struct {
	InvoiceNo   string
	InvoiceBase string
	// BumpedCounter is true when a fresh base was minted from the sub-entity
	// counter rather than derived from history
	BumpedCounter bool
}
