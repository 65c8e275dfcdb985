package receipt

import (
	"context"

	"github.com/agencyops/agencyops/internal/types"
)

// Repository defines the interface for receipt persistence operations.
// Create must enforce uniqueness of Seq and ReceiptNo and report a collision
// as ierr.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, receipt *Receipt) error
	Get(ctx context.Context, id string) (*Receipt, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *types.ReceiptFilter) ([]*Receipt, error)
	Count(ctx context.Context, filter *types.ReceiptFilter) (int, error)
}
