package service

import (
	"testing"

	"github.com/agencyops/agencyops/internal/api/dto"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/testutil"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/stretchr/testify/suite"
)

type ClientServiceSuite struct {
	testutil.BaseServiceTestSuite
	service   ClientService
	subEntity *subentity.SubEntity
}

func TestClientService(t *testing.T) {
	suite.Run(t, new(ClientServiceSuite))
}

func (s *ClientServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewClientService(testServiceParams(&s.BaseServiceTestSuite))

	s.subEntity = &subentity.SubEntity{
		ID:        "se_agh",
		Name:      "Agency House",
		Prefix:    "AGH",
		TaxRate:   subentity.DefaultTaxRate,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubEntityRepo.Create(s.GetContext(), s.subEntity))
}

func (s *ClientServiceSuite) TestCreateClientAssignsCode() {
	ctx := s.GetContext()

	first, err := s.service.CreateClient(ctx, &dto.CreateClientRequest{
		Name:        "Asha Rao",
		Email:       " Asha@Acme.test ",
		SubEntityID: s.subEntity.ID,
	})
	s.Require().NoError(err)
	s.Equal("AGH-C001", first.ClientCode)
	s.Equal("asha@acme.test", first.Email)
	s.Equal([]string{"AGH"}, first.SubEntityCodes)

	second, err := s.service.CreateClient(ctx, &dto.CreateClientRequest{
		Name:           "Vikram Shah",
		SubEntityID:    s.subEntity.ID,
		SubEntityCodes: []string{"zen", "agh"},
	})
	s.Require().NoError(err)
	s.Equal("AGH-C002", second.ClientCode)
	s.Equal([]string{"ZEN", "AGH"}, second.SubEntityCodes)

	s.Equal(int64(2), s.GetDB().TxCount())
}

func (s *ClientServiceSuite) TestCreateClientTrimsBeforeValidating() {
	ctx := s.GetContext()

	resp, err := s.service.CreateClient(ctx, &dto.CreateClientRequest{
		Name:  "  Meera Iyer\t",
		Email: "\tMEERA@Studio.Test  ",
	})
	s.Require().NoError(err)
	s.Equal("Meera Iyer", resp.Name)
	s.Equal("meera@studio.test", resp.Email)

	_, err = s.service.CreateClient(ctx, &dto.CreateClientRequest{Name: "   "})
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateClient(ctx, &dto.CreateClientRequest{
		Name:  "Padded",
		Email: "  not-an-email  ",
	})
	s.True(ierr.IsValidation(err))
}

func (s *ClientServiceSuite) TestCreateClientKeepsExplicitCode() {
	resp, err := s.service.CreateClient(s.GetContext(), &dto.CreateClientRequest{
		Name:       "Legacy Co",
		ClientCode: "LEG-7",
	})
	s.Require().NoError(err)
	s.Equal("LEG-7", resp.ClientCode)

	_, err = s.service.CreateClient(s.GetContext(), &dto.CreateClientRequest{
		Name:       "Legacy Copy",
		ClientCode: "LEG-7",
	})
	s.True(ierr.IsAlreadyExists(err))
}

func (s *ClientServiceSuite) TestCreateClientValidation() {
	_, err := s.service.CreateClient(s.GetContext(), &dto.CreateClientRequest{Email: "not-an-email"})
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateClient(s.GetContext(), &dto.CreateClientRequest{
		Name:        "Orphan",
		SubEntityID: "se_missing",
	})
	s.True(ierr.IsNotFound(err))
}

func (s *ClientServiceSuite) TestResolveClient() {
	created, err := s.service.CreateClient(s.GetContext(), &dto.CreateClientRequest{
		Name:        "Asha Rao",
		Email:       "asha@acme.test",
		SubEntityID: s.subEntity.ID,
	})
	s.Require().NoError(err)

	for _, ref := range []string{created.ID, "AGH-C001", "ASHA@ACME.TEST"} {
		resp, err := s.service.ResolveClient(s.GetContext(), ref)
		s.Require().NoError(err, ref)
		s.Equal(created.ID, resp.ID)
	}

	_, err = s.service.ResolveClient(s.GetContext(), "nobody")
	s.True(ierr.IsNotFound(err))
	_, err = s.service.ResolveClient(s.GetContext(), "  ")
	s.True(ierr.IsValidation(err))

	got, err := s.service.GetClient(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Equal("Asha Rao", got.Name)
}
