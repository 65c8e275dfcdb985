package service

import (
	"context"

	"github.com/agencyops/agencyops/internal/api/dto"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	"github.com/samber/lo"
)

type SubEntityService interface {
	CreateSubEntity(ctx context.Context, req *dto.CreateSubEntityRequest) (*dto.SubEntityResponse, error)
	GetSubEntity(ctx context.Context, id string) (*dto.SubEntityResponse, error)
	ListSubEntities(ctx context.Context) (*dto.ListSubEntitiesResponse, error)
}

type subEntityService struct {
	ServiceParams
}

func NewSubEntityService(params ServiceParams) SubEntityService {
	return &subEntityService{ServiceParams: params}
}

func (s *subEntityService) CreateSubEntity(ctx context.Context, req *dto.CreateSubEntityRequest) (*dto.SubEntityResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	se := req.ToSubEntity(ctx)
	if err := s.SubEntityRepo.Create(ctx, se); err != nil {
		return nil, err
	}

	s.Logger.Infow("created sub-entity",
		"sub_entity_id", se.ID,
		"name", se.Name,
		"prefix", se.Prefix,
	)
	return dto.NewSubEntityResponse(se), nil
}

func (s *subEntityService) GetSubEntity(ctx context.Context, id string) (*dto.SubEntityResponse, error) {
	se, err := s.getSubEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSubEntityResponse(se), nil
}

func (s *subEntityService) ListSubEntities(ctx context.Context) (*dto.ListSubEntitiesResponse, error) {
	items, err := s.SubEntityRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ListSubEntitiesResponse{
		Items: lo.Map(items, func(se *subentity.SubEntity, _ int) *dto.SubEntityResponse {
			return dto.NewSubEntityResponse(se)
		}),
	}, nil
}
