package testutil

import (
	"context"
	"strings"

	"github.com/agencyops/agencyops/internal/domain/client"
	ierr "github.com/agencyops/agencyops/internal/errors"
)

var _ client.Repository = (*InMemoryClientStore)(nil)

type InMemoryClientStore struct {
	*InMemoryStore[*client.Client]
}

func NewInMemoryClientStore() *InMemoryClientStore {
	return &InMemoryClientStore{
		InMemoryStore: NewInMemoryStore[*client.Client](),
	}
}

func copyClient(c *client.Client) *client.Client {
	if c == nil {
		return nil
	}
	out := *c
	out.SubEntityCodes = append([]string(nil), c.SubEntityCodes...)
	return &out
}

func clientNotFound(key, value string) error {
	return ierr.NewError("client not found").
		WithHint("Client not found").
		WithReportableDetails(map[string]any{key: value}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryClientStore) Create(ctx context.Context, c *client.Client) error {
	return s.InMemoryStore.CreateUnique(ctx, c.ID, copyClient(c), func(existing, candidate *client.Client) bool {
		return candidate.ClientCode != "" && existing.ClientCode == candidate.ClientCode
	})
}

func (s *InMemoryClientStore) Get(ctx context.Context, id string) (*client.Client, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, clientNotFound("client_id", id)
	}
	return copyClient(c), nil
}

func (s *InMemoryClientStore) GetByReference(ctx context.Context, ref string) (*client.Client, error) {
	if c, ok := s.InMemoryStore.Find(ctx, func(_ context.Context, c *client.Client) bool {
		return c.ClientCode != "" && c.ClientCode == ref
	}); ok {
		return copyClient(c), nil
	}
	if c, ok := s.InMemoryStore.Find(ctx, func(_ context.Context, c *client.Client) bool {
		return c.Email != "" && strings.EqualFold(c.Email, ref)
	}); ok {
		return copyClient(c), nil
	}
	return nil, clientNotFound("reference", ref)
}
