package subentity

import (
	"context"
)

// Repository defines the interface for sub-entity data access
type Repository interface {
	Create(ctx context.Context, subEntity *SubEntity) error
	Get(ctx context.Context, id string) (*SubEntity, error)
	List(ctx context.Context) ([]*SubEntity, error)
}
