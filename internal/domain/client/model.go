package client

import (
	"github.com/agencyops/agencyops/internal/types"
)

// Client is a billed customer of the agency
type Client struct {
	ID           string `json:"id"`
	ClientCode   string `json:"client_code"`
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`

	// SubEntityID is the sub-entity the client was registered under, if any
	SubEntityID string `json:"sub_entity_id,omitempty"`

	// SubEntityCodes are invoice prefixes associated with the client. The
	// first one is used when the issuing sub-entity has no prefix.
	SubEntityCodes []string `json:"sub_entity_codes"`

	types.BaseModel
}

// DisplayName is the name printed on documents
func (c *Client) DisplayName() string {
	if c.BusinessName != "" {
		return c.BusinessName
	}
	return c.Name
}

// FirstSubEntityCode returns the first non-empty associated prefix
func (c *Client) FirstSubEntityCode() string {
	for _, code := range c.SubEntityCodes {
		if code != "" {
			return code
		}
	}
	return ""
}
