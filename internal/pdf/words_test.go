package pdf

import (
	"testing"

	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"zero", "0", "Zero Rupees"},
		{"one", "1", "One Rupees"},
		{"teens", "19", "Nineteen Rupees"},
		{"round tens", "40", "Forty Rupees"},
		{"tens and ones", "99", "Ninety Nine Rupees"},
		{"hundred", "100", "One Hundred Rupees"},
		{"hundreds", "705", "Seven Hundred Five Rupees"},
		{"thousands with paise", "1234.50", "One Thousand Two Hundred Thirty Four Rupees and Fifty Paise"},
		{"lakh", "100000", "One Lakh Rupees"},
		{"lakhs", "2537000", "Twenty Five Lakh Thirty Seven Thousand Rupees"},
		{"crore", "10000000", "One Crore Rupees"},
		{"crores", "123456789", "Twelve Crore Thirty Four Lakh Fifty Six Thousand Seven Hundred Eighty Nine Rupees"},
		{"paise only", "0.05", "Zero Rupees and Five Paise"},
		{"paise rounding", "10.999", "Eleven Rupees"},
		{"gst total", "11800", "Eleven Thousand Eight Hundred Rupees"},
		{"negative", "-15.25", "Minus Fifteen Rupees and Twenty Five Paise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := AmountInWords(decimal.RequireFromString(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, words)
		})
	}
}

func TestAmountInWords_NoStraySpaces(t *testing.T) {
	for _, v := range []int64{100, 1000, 100000, 10000000, 10100, 1000001} {
		words, err := AmountInWords(decimal.NewFromInt(v))
		require.NoError(t, err)
		assert.NotContains(t, words, "  ", "amount %d", v)
	}
}

func TestAmountInWords_OutOfRange(t *testing.T) {
	for _, raw := range []string{"9223372036854775808", "-9223372036854775808", "1000000000000000000", "999999999999999999.999"} {
		t.Run(raw, func(t *testing.T) {
			var words string
			var err error
			require.NotPanics(t, func() {
				words, err = AmountInWords(decimal.RequireFromString(raw))
			})
			assert.True(t, ierr.IsValidation(err))
			assert.Empty(t, words)
		})
	}

	words, err := AmountInWords(decimal.RequireFromString("999999999999999999.99"))
	require.NoError(t, err)
	assert.Contains(t, words, "Crore")
	assert.Contains(t, words, "Ninety Nine Paise")
}
