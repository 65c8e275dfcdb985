package service

import (
	"context"
	"fmt"

	"github.com/agencyops/agencyops/internal/api/dto"
	"github.com/agencyops/agencyops/internal/domain/sequence"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/samber/lo"
)

type ClientService interface {
	CreateClient(ctx context.Context, req *dto.CreateClientRequest) (*dto.ClientResponse, error)
	GetClient(ctx context.Context, id string) (*dto.ClientResponse, error)

	// ResolveClient accepts a client id, client code or email
	ResolveClient(ctx context.Context, ref string) (*dto.ClientResponse, error)
}

type clientService struct {
	ServiceParams
}

func NewClientService(params ServiceParams) ClientService {
	return &clientService{ServiceParams: params}
}

func (s *clientService) CreateClient(ctx context.Context, req *dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := req.ToClient(ctx)

	var se *subentity.SubEntity
	if req.SubEntityID != "" {
		var err error
		if se, err = s.getSubEntity(ctx, req.SubEntityID); err != nil {
			return nil, err
		}
		if se.Prefix != "" && !lo.Contains(c.SubEntityCodes, se.Prefix) {
			c.SubEntityCodes = append(c.SubEntityCodes, se.Prefix)
		}
	}

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if c.ClientCode == "" && se != nil {
			n, err := s.SequenceRepo.Next(ctx, sequence.ClientKey(se.ID))
			if err != nil {
				return err
			}
			c.ClientCode = formatClientCode(se.Prefix, n)
		}
		return s.ClientRepo.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created client",
		"client_id", c.ID,
		"client_code", c.ClientCode,
		"sub_entity_id", c.SubEntityID,
	)
	return dto.NewClientResponse(c), nil
}

// formatClientCode renders a code such as "AGH-C004"
func formatClientCode(prefix string, n int64) string {
	return fmt.Sprintf("%s-C%03d", prefix, n)
}

func (s *clientService) GetClient(ctx context.Context, id string) (*dto.ClientResponse, error) {
	if id == "" {
		return nil, ierr.NewError("client_id is required").
			WithHint("Client ID is required").
			Mark(ierr.ErrValidation)
	}

	c, err := s.ClientRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewClientResponse(c), nil
}

func (s *clientService) ResolveClient(ctx context.Context, ref string) (*dto.ClientResponse, error) {
	c, err := s.resolveClient(ctx, ref)
	if err != nil {
		return nil, err
	}
	return dto.NewClientResponse(c), nil
}
