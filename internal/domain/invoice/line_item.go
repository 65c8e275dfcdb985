package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

const maxDerivedTitleLength = 120

// LineItem is a single billed service on an invoice
type LineItem struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Totals are the money figures of an invoice, each rounded to 2 places
type Totals struct {
	Subtotal    decimal.Decimal
	TaxRate     decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// NormalizeLineItem fills blank titles and descriptions from each other and
// computes the amount as quantity times rate
func NormalizeLineItem(title, description string, quantity, rate decimal.Decimal) LineItem {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" {
		title = firstLine(description)
	}
	if title == "" {
		title = "-"
	}
	if description == "" {
		description = title
	}

	return LineItem{
		Title:       title,
		Description: description,
		Quantity:    quantity,
		Rate:        rate,
		Amount:      quantity.Mul(rate).Round(2),
	}
}

// ComputeTotals sums the line amounts and applies the tax rate. When tax is
// excluded both the rate and the amount are zero.
func ComputeTotals(items []LineItem, taxRate decimal.Decimal, includeTax bool) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	subtotal = subtotal.Round(2)

	if !includeTax {
		taxRate = decimal.Zero
	}
	taxAmount := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)

	return Totals{
		Subtotal:    subtotal,
		TaxRate:     taxRate,
		TaxAmount:   taxAmount,
		TotalAmount: subtotal.Add(taxAmount).Round(2),
	}
}

func firstLine(s string) string {
	if s == "" {
		return ""
	}
	line := s
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		line = s[:idx]
	}
	runes := []rune(line)
	if len(runes) > maxDerivedTitleLength {
		runes = runes[:maxDerivedTitleLength]
	}
	return string(runes)
}
