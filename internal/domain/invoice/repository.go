package invoice

import (
	"context"

	"github.com/agencyops/agencyops/internal/types"
)

// Repository defines the interface for invoice persistence operations.
// Create must enforce uniqueness of InvoiceNo and report a collision as
// ierr.ErrAlreadyExists.
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetByNumber retrieves an invoice by its invoice number
	GetByNumber(ctx context.Context, invoiceNo string) (*Invoice, error)

	// Update updates the mutable fields of an invoice
	Update(ctx context.Context, invoice *Invoice) error

	// Delete removes an invoice
	Delete(ctx context.Context, id string) error

	// List retrieves invoices based on filter criteria, newest first
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// ListNumbersForPair returns the invoice numbers issued to a client by a
	// sub-entity, oldest first
	ListNumbersForPair(ctx context.Context, clientID, subEntityID string) ([]NumberEntry, error)
}
