package validator

import (
	"reflect"
	"strings"
	"sync"

	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// NewValidator returns the shared validator, building it on first use. Field
// errors are reported by their json names.
func NewValidator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
			switch d := fl.Field().Interface().(type) {
			case decimal.Decimal:
				return !d.IsNegative()
			case *decimal.Decimal:
				return d == nil || !d.IsNegative()
			}
			return false
		})
		_ = v.RegisterValidation("decimal_lte", func(fl validator.FieldLevel) bool {
			limit, err := decimal.NewFromString(fl.Param())
			if err != nil {
				return false
			}
			switch d := fl.Field().Interface().(type) {
			case decimal.Decimal:
				return d.LessThanOrEqual(limit)
			case *decimal.Decimal:
				return d == nil || d.LessThanOrEqual(limit)
			}
			return false
		})
		validate = v
	})
	return validate
}

func GetValidator() *validator.Validate {
	return NewValidator()
}

func ValidateRequest(req interface{}) error {
	if err := NewValidator().Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
