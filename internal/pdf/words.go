package pdf

import (
	"strings"

	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/shopspring/decimal"
)

var (
	onesWords = []string{
		"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tensWords = []string{
		"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
	}
)

// MaxSpellableAmount is the exclusive bound on the magnitude AmountInWords
// accepts. Rupees must fit an int64.
var MaxSpellableAmount = decimal.New(1, 18)

const (
	crore    = 10000000
	lakh     = 100000
	thousand = 1000
	hundred  = 100
)

// AmountInWords spells a rupee amount using Indian grouping, for example
// 1234.50 is "One Thousand Two Hundred Thirty Four Rupees and Fifty Paise".
// Paise are omitted when zero and a zero amount is "Zero Rupees".
func AmountInWords(amount decimal.Decimal) (string, error) {
	amount = amount.Round(2)
	if amount.Abs().GreaterThanOrEqual(MaxSpellableAmount) {
		return "", ierr.NewErrorf("amount %s is too large to spell", amount.String()).
			WithHint("Amount is too large").
			WithReportableDetails(map[string]any{
				"amount": amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	prefix := ""
	if amount.IsNegative() {
		prefix = "Minus "
		amount = amount.Neg()
	}

	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	rupeeWords := spell(rupees)
	if rupeeWords == "" {
		rupeeWords = "Zero"
	}

	out := prefix + rupeeWords + " Rupees"
	if paise > 0 {
		out += " and " + spell(paise) + " Paise"
	}
	return out, nil
}

// spell converts a non-negative integer to words, empty for zero
func spell(n int64) string {
	return strings.Join(spellParts(n), " ")
}

func spellParts(n int64) []string {
	switch {
	case n == 0:
		return nil
	case n < 20:
		return []string{onesWords[n]}
	case n < 100:
		parts := []string{tensWords[n/10]}
		if n%10 != 0 {
			parts = append(parts, onesWords[n%10])
		}
		return parts
	case n < thousand:
		return group(n, hundred, "Hundred")
	case n < lakh:
		return group(n, thousand, "Thousand")
	case n < crore:
		return group(n, lakh, "Lakh")
	default:
		return group(n, crore, "Crore")
	}
}

func group(n, unit int64, name string) []string {
	parts := append(spellParts(n/unit), name)
	return append(parts, spellParts(n%unit)...)
}
