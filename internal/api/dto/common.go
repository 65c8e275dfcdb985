package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// LooseDecimal accepts a JSON number or string. Anything that does not parse
// as a number decodes to zero.
type LooseDecimal struct {
	decimal.Decimal
}

func NewLooseDecimal(d decimal.Decimal) LooseDecimal {
	return LooseDecimal{Decimal: d}
}

func (l *LooseDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := strings.Trim(string(data), `"`)
	raw = strings.TrimSpace(raw)

	d, err := decimal.NewFromString(raw)
	if err != nil {
		l.Decimal = decimal.Zero
		return nil
	}
	l.Decimal = d
	return nil
}

func (l LooseDecimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Decimal)
}
