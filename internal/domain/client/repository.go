package client

import (
	"context"
)

// Repository defines the interface for client data access
type Repository interface {
	Create(ctx context.Context, client *Client) error
	Get(ctx context.Context, id string) (*Client, error)
	// GetByReference finds a client by its client code or email
	GetByReference(ctx context.Context, ref string) (*Client, error)
}
