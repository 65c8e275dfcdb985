package subentity

import (
	"strings"

	"github.com/agencyops/agencyops/internal/types"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the GST percentage applied when a sub-entity sets none
var DefaultTaxRate = decimal.NewFromInt(18)

// SubEntity is a business unit of the agency that issues invoices under its
// own prefix and letterhead
type SubEntity struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Prefix              string          `json:"prefix"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	Tagline             string          `json:"tagline,omitempty"`
	LogoPath            string          `json:"logo_path,omitempty"`
	AddressLine1        string          `json:"address_line1,omitempty"`
	AddressLine2        string          `json:"address_line2,omitempty"`
	ContactEmail        string          `json:"contact_email,omitempty"`
	TaxNumber           string          `json:"tax_number,omitempty"`
	AuthorisedSignatory string          `json:"authorised_signatory,omitempty"`
	BankDetails         BankDetails     `json:"bank_details"`
	types.BaseModel
}

type BankDetails struct {
	BankName      string `json:"bank_name,omitempty" bson:"bank_name,omitempty"`
	AccountHolder string `json:"account_holder,omitempty" bson:"account_holder,omitempty"`
	AccountType   string `json:"account_type,omitempty" bson:"account_type,omitempty"`
	AccountNumber string `json:"account_number,omitempty" bson:"account_number,omitempty"`
	IFSCCode      string `json:"ifsc_code,omitempty" bson:"ifsc_code,omitempty"`
	UPIID         string `json:"upi_id,omitempty" bson:"upi_id,omitempty"`
}

// NormalizePrefix trims and upper-cases an invoice prefix
func NormalizePrefix(prefix string) string {
	return strings.ToUpper(strings.TrimSpace(prefix))
}

// EffectiveTaxRate returns the configured rate. An explicit zero is kept.
func (s *SubEntity) EffectiveTaxRate() decimal.Decimal {
	if s == nil {
		return DefaultTaxRate
	}
	return s.TaxRate
}
