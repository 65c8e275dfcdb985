package testutil

import (
	"context"

	"github.com/agencyops/agencyops/internal/domain/subentity"
	ierr "github.com/agencyops/agencyops/internal/errors"
)

var _ subentity.Repository = (*InMemorySubEntityStore)(nil)

type InMemorySubEntityStore struct {
	*InMemoryStore[*subentity.SubEntity]
}

func NewInMemorySubEntityStore() *InMemorySubEntityStore {
	return &InMemorySubEntityStore{
		InMemoryStore: NewInMemoryStore[*subentity.SubEntity](),
	}
}

func copySubEntity(se *subentity.SubEntity) *subentity.SubEntity {
	if se == nil {
		return nil
	}
	c := *se
	return &c
}

func (s *InMemorySubEntityStore) Create(ctx context.Context, se *subentity.SubEntity) error {
	return s.InMemoryStore.CreateUnique(ctx, se.ID, copySubEntity(se), func(existing, candidate *subentity.SubEntity) bool {
		return existing.Name == candidate.Name
	})
}

func (s *InMemorySubEntityStore) Get(ctx context.Context, id string) (*subentity.SubEntity, error) {
	se, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("sub-entity not found").
			WithHintf("Sub-entity %s not found", id).
			WithReportableDetails(map[string]any{"sub_entity_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copySubEntity(se), nil
}

func (s *InMemorySubEntityStore) List(ctx context.Context) ([]*subentity.SubEntity, error) {
	items := s.InMemoryStore.List(ctx, nil, nil, func(i, j *subentity.SubEntity) bool {
		return i.Name < j.Name
	})
	out := make([]*subentity.SubEntity, 0, len(items))
	for _, se := range items {
		out = append(out, copySubEntity(se))
	}
	return out, nil
}
