package service

import (
	"testing"

	"github.com/agencyops/agencyops/internal/api/dto"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubEntityServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubEntityService
}

func TestSubEntityService(t *testing.T) {
	suite.Run(t, new(SubEntityServiceSuite))
}

func (s *SubEntityServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubEntityService(testServiceParams(&s.BaseServiceTestSuite))
}

func (s *SubEntityServiceSuite) TestCreateSubEntity() {
	ctx := s.GetContext()

	created, err := s.service.CreateSubEntity(ctx, &dto.CreateSubEntityRequest{
		Name:   "Agency House",
		Prefix: "agh",
	})
	s.Require().NoError(err)
	s.Equal("AGH", created.Prefix)
	s.True(decimal.NewFromInt(18).Equal(created.TaxRate))

	exempt, err := s.service.CreateSubEntity(ctx, &dto.CreateSubEntityRequest{
		Name:    "Export Desk",
		Prefix:  "EXP",
		TaxRate: lo.ToPtr(decimal.Zero),
	})
	s.Require().NoError(err)
	s.True(exempt.TaxRate.IsZero())

	got, err := s.service.GetSubEntity(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Agency House", got.Name)

	list, err := s.service.ListSubEntities(ctx)
	s.Require().NoError(err)
	s.Require().Len(list.Items, 2)
	s.Equal("Agency House", list.Items[0].Name)
	s.Equal("Export Desk", list.Items[1].Name)
}

func (s *SubEntityServiceSuite) TestCreateSubEntityValidation() {
	tests := []struct {
		name string
		req  *dto.CreateSubEntityRequest
	}{
		{name: "missing prefix", req: &dto.CreateSubEntityRequest{Name: "No Prefix"}},
		{name: "prefix with digits", req: &dto.CreateSubEntityRequest{Name: "Digits", Prefix: "AB1"}},
		{name: "negative tax", req: &dto.CreateSubEntityRequest{Name: "Neg", Prefix: "NEG", TaxRate: lo.ToPtr(decimal.NewFromInt(-1))}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreateSubEntity(s.GetContext(), tt.req)
			s.True(ierr.IsValidation(err), "unexpected error: %v", err)
		})
	}
}

func (s *SubEntityServiceSuite) TestGetSubEntityIsCached() {
	ctx := s.GetContext()
	created, err := s.service.CreateSubEntity(ctx, &dto.CreateSubEntityRequest{Name: "Agency House", Prefix: "AGH"})
	s.Require().NoError(err)

	_, err = s.service.GetSubEntity(ctx, created.ID)
	s.Require().NoError(err)

	s.GetStores().SubEntityRepo.Clear()
	cached, err := s.service.GetSubEntity(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, cached.ID)

	_, err = s.service.GetSubEntity(ctx, "se_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *SubEntityServiceSuite) TestDuplicateNameRejected() {
	_, err := s.service.CreateSubEntity(s.GetContext(), &dto.CreateSubEntityRequest{Name: "Agency House", Prefix: "AGH"})
	s.Require().NoError(err)
	_, err = s.service.CreateSubEntity(s.GetContext(), &dto.CreateSubEntityRequest{Name: "Agency House", Prefix: "AGX"})
	s.True(ierr.IsAlreadyExists(err))
}
