package dto

import (
	"context"
	"strings"

	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/agencyops/agencyops/internal/validator"
	"github.com/samber/lo"
)

type CreateClientRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	BusinessName string `json:"business_name,omitempty" validate:"max=255"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty" validate:"max=50"`
	Address      string `json:"address,omitempty" validate:"max=1000"`
	// ClientCode is assigned from the sub-entity counter when left blank
	ClientCode     string   `json:"client_code,omitempty" validate:"max=50"`
	SubEntityID    string   `json:"sub_entity_id,omitempty"`
	SubEntityCodes []string `json:"sub_entity_codes,omitempty" validate:"dive,max=20"`
}

// Validate trims the free-text fields and lowercases the email before the
// rules run, so padded input is judged by its content
func (r *CreateClientRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return validator.ValidateRequest(r)
}

func (r *CreateClientRequest) ToClient(ctx context.Context) *client.Client {
	codes := lo.FilterMap(r.SubEntityCodes, func(code string, _ int) (string, bool) {
		code = subentity.NormalizePrefix(code)
		return code, code != ""
	})

	return &client.Client{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CLIENT),
		ClientCode:     strings.TrimSpace(r.ClientCode),
		Name:           strings.TrimSpace(r.Name),
		BusinessName:   strings.TrimSpace(r.BusinessName),
		Email:          strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:          strings.TrimSpace(r.Phone),
		Address:        strings.TrimSpace(r.Address),
		SubEntityID:    r.SubEntityID,
		SubEntityCodes: lo.Uniq(codes),
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

type ClientResponse struct {
	*client.Client
}

func NewClientResponse(c *client.Client) *ClientResponse {
	return &ClientResponse{Client: c}
}
