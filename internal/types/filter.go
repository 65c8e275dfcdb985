package types

import (
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/samber/lo"
)

const (
	FILTER_DEFAULT_LIMIT = 50
	FILTER_MAX_LIMIT     = 1000
)

// QueryFilter represents a generic query filter with optional fields
type QueryFilter struct {
	Limit  *int `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset *int `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
}

// NewDefaultQueryFilter defines default values for query filters
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FILTER_DEFAULT_LIMIT),
		Offset: lo.ToPtr(0),
	}
}

// GetLimit returns the limit value or default if not set
func (f QueryFilter) GetLimit() int {
	if f.Limit == nil {
		return FILTER_DEFAULT_LIMIT
	}
	return *f.Limit
}

// GetOffset returns the offset value or default if not set
func (f QueryFilter) GetOffset() int {
	if f.Offset == nil {
		return 0
	}
	return *f.Offset
}

// Validate validates the filter fields
func (f QueryFilter) Validate() error {
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > FILTER_MAX_LIMIT) {
		return ierr.NewError("limit must be between 1 and 1000").
			WithHint("Please provide a valid limit").
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("offset must be non-negative").
			WithHint("Please provide a valid offset").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceFilter narrows invoice listings. Results are newest first.
type InvoiceFilter struct {
	*QueryFilter
	ClientID    string        `json:"client_id,omitempty" form:"client_id"`
	SubEntityID string        `json:"sub_entity_id,omitempty" form:"sub_entity_id"`
	Status      InvoiceStatus `json:"status,omitempty" form:"status"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *InvoiceFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	if f.Status != "" {
		return f.Status.Validate()
	}
	return nil
}

// ReceiptFilter narrows receipt listings. Results are newest first.
type ReceiptFilter struct {
	*QueryFilter
	ClientID  string `json:"client_id,omitempty" form:"client_id"`
	InvoiceID string `json:"invoice_id,omitempty" form:"invoice_id"`
}

func NewReceiptFilter() *ReceiptFilter {
	return &ReceiptFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *ReceiptFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	return f.QueryFilter.Validate()
}
