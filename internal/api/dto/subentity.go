package dto

import (
	"context"
	"strings"

	"github.com/agencyops/agencyops/internal/domain/subentity"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/agencyops/agencyops/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateSubEntityRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	// Prefix must be letters only so issued numbers keep the NAME-001 shape
	Prefix              string                `json:"prefix" validate:"required,alpha,max=10"`
	TaxRate             *decimal.Decimal      `json:"tax_rate,omitempty" validate:"omitempty,decimal_gte0,decimal_lte=100"`
	Tagline             string                `json:"tagline,omitempty" validate:"max=255"`
	LogoPath            string                `json:"logo_path,omitempty" validate:"max=500"`
	AddressLine1        string                `json:"address_line1,omitempty" validate:"max=255"`
	AddressLine2        string                `json:"address_line2,omitempty" validate:"max=255"`
	ContactEmail        string                `json:"contact_email,omitempty" validate:"max=255"`
	TaxNumber           string                `json:"tax_number,omitempty" validate:"max=50"`
	AuthorisedSignatory string                `json:"authorised_signatory,omitempty" validate:"max=255"`
	BankDetails         subentity.BankDetails `json:"bank_details"`
}

func (r *CreateSubEntityRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateSubEntityRequest) ToSubEntity(ctx context.Context) *subentity.SubEntity {
	taxRate := subentity.DefaultTaxRate
	if r.TaxRate != nil {
		taxRate = *r.TaxRate
	}

	return &subentity.SubEntity{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUB_ENTITY),
		Name:                strings.TrimSpace(r.Name),
		Prefix:              subentity.NormalizePrefix(r.Prefix),
		TaxRate:             taxRate,
		Tagline:             r.Tagline,
		LogoPath:            r.LogoPath,
		AddressLine1:        r.AddressLine1,
		AddressLine2:        r.AddressLine2,
		ContactEmail:        r.ContactEmail,
		TaxNumber:           r.TaxNumber,
		AuthorisedSignatory: r.AuthorisedSignatory,
		BankDetails:         r.BankDetails,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
}

type SubEntityResponse struct {
	*subentity.SubEntity
}

func NewSubEntityResponse(se *subentity.SubEntity) *SubEntityResponse {
	return &SubEntityResponse{SubEntity: se}
}

type ListSubEntitiesResponse struct {
	Items []*SubEntityResponse `json:"items"`
}
