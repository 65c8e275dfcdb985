package service

import (
	"testing"
	"time"

	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/sequence"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/testutil"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/stretchr/testify/suite"
)

type NumberResolverSuite struct {
	testutil.BaseServiceTestSuite
	resolver NumberResolver
	testData struct {
		client    *client.Client
		other     *client.Client
		subEntity *subentity.SubEntity
	}
}

func TestNumberResolver(t *testing.T) {
	suite.Run(t, new(NumberResolverSuite))
}

func (s *NumberResolverSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.resolver = NewNumberResolver(testServiceParams(&s.BaseServiceTestSuite))

	s.testData.subEntity = &subentity.SubEntity{
		ID:        "se_agh",
		Name:      "Agency House",
		Prefix:    "AGH",
		TaxRate:   subentity.DefaultTaxRate,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.testData.client = &client.Client{
		ID:        "client_a",
		Name:      "Client A",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.testData.other = &client.Client{
		ID:        "client_b",
		Name:      "Client B",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
}

// seedNumbers stores invoices for a pair, oldest first
func (s *NumberResolverSuite) seedNumbers(clientID, subEntityID string, numbers ...string) {
	start := s.GetNow().Add(-time.Hour)
	for i, no := range numbers {
		inv := &invoice.Invoice{
			ID:          s.GetUUID(),
			InvoiceNo:   no,
			InvoiceBase: invoice.ExtractBase(no),
			ClientID:    clientID,
			SubEntityID: subEntityID,
			Status:      types.InvoiceStatusPending,
			BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
		}
		inv.CreatedAt = start.Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.GetStores().InvoiceRepo.Seed(s.GetContext(), inv))
	}
}

func (s *NumberResolverSuite) TestFirstInvoiceMintsBase() {
	number, err := s.resolver.AllocateInvoiceNumber(s.GetContext(), s.testData.client, s.testData.subEntity)
	s.Require().NoError(err)
	s.Equal("AGH-001", number.InvoiceNo)
	s.Equal("AGH-001", number.InvoiceBase)
	s.True(number.BumpedCounter)

	current, err := s.GetStores().SequenceRepo.Current(s.GetContext(), sequence.InvoiceKey(s.testData.subEntity.ID))
	s.Require().NoError(err)
	s.Equal(int64(1), current)
}

func (s *NumberResolverSuite) TestNextSuffixIsMaxPlusOne() {
	s.testData.subEntity.Prefix = "X"
	s.seedNumbers(s.testData.client.ID, s.testData.subEntity.ID, "X-001", "X-001 (1)", "X-001 (3)")

	number, err := s.resolver.AllocateInvoiceNumber(s.GetContext(), s.testData.client, s.testData.subEntity)
	s.Require().NoError(err)
	s.Equal("X-001 (4)", number.InvoiceNo)
	s.Equal("X-001", number.InvoiceBase)
	s.False(number.BumpedCounter)

	current, err := s.GetStores().SequenceRepo.Current(s.GetContext(), sequence.InvoiceKey(s.testData.subEntity.ID))
	s.Require().NoError(err)
	s.Zero(current, "a repeat invoice must not consume the counter")
}

func (s *NumberResolverSuite) TestBaseStableAcrossPairs() {
	s.seedNumbers(s.testData.client.ID, s.testData.subEntity.ID, "AGH-001")
	s.GetStores().SequenceRepo.Set(sequence.InvoiceKey(s.testData.subEntity.ID), 1)

	otherFirst, err := s.resolver.AllocateInvoiceNumber(s.GetContext(), s.testData.other, s.testData.subEntity)
	s.Require().NoError(err)
	s.Equal("AGH-002", otherFirst.InvoiceNo)
	s.seedNumbers(s.testData.other.ID, s.testData.subEntity.ID, otherFirst.InvoiceNo)

	number, err := s.resolver.AllocateInvoiceNumber(s.GetContext(), s.testData.client, s.testData.subEntity)
	s.Require().NoError(err)
	s.Equal("AGH-001 (1)", number.InvoiceNo)
	s.Equal("AGH-001", number.InvoiceBase)
}

func (s *NumberResolverSuite) TestPrefixFallbacks() {
	tests := []struct {
		name     string
		sePrefix string
		codes    []string
		want     string
	}{
		{name: "sub-entity prefix wins", sePrefix: "agh", codes: []string{"ZEN"}, want: "AGH-001"},
		{name: "client code when sub-entity has none", sePrefix: "", codes: []string{"", "zen"}, want: "ZEN-001"},
		{name: "configured default last", sePrefix: " ", codes: nil, want: "PAN-001"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.GetStores().SequenceRepo.Clear()
			se := *s.testData.subEntity
			se.Prefix = tt.sePrefix
			c := *s.testData.client
			c.SubEntityCodes = tt.codes

			number, err := s.resolver.AllocateInvoiceNumber(s.GetContext(), &c, &se)
			s.Require().NoError(err)
			s.Equal(tt.want, number.InvoiceNo)
		})
	}
}

func (s *NumberResolverSuite) TestMalformedHistoryUsesWholeNumberAsBase() {
	s.seedNumbers(s.testData.client.ID, s.testData.subEntity.ID, "legacy")

	number, err := s.resolver.AllocateInvoiceNumber(s.GetContext(), s.testData.client, s.testData.subEntity)
	s.Require().NoError(err)
	s.Equal("legacy (1)", number.InvoiceNo)
	s.Equal("legacy", number.InvoiceBase)
}

func (s *NumberResolverSuite) TestCounterFailurePropagates() {
	s.GetStores().SequenceRepo.FailWith(ierr.ErrDatabase)

	_, err := s.resolver.AllocateInvoiceNumber(s.GetContext(), s.testData.client, s.testData.subEntity)
	s.Error(err)
	s.True(ierr.IsDatabase(err))
}
