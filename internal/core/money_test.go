package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"-12.5", "-12.5", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1,2.3", "", false},
		{"", "", false},
		{"1000000000000000", "1000000000000000", true},
		{"-1000000000000000", "-1000000000000000", true},
		{"1000000000000000.01", "", false},
		{"-92233720368547758.08", "", false},
		{"1e20", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.out)), "input %q: got %s", tc.in, got)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":        "0.00€",
		"12":       "12.00€",
		"12.5":     "12.50€",
		"1234.56":  "1,234.56€",
		"1000000":  "1,000,000.00€",
		"1.005":    "1.01€",
		"-42.1":    "-42.10€",
		"0.004":    "0.00€",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmount(decimal.RequireFromString(in)), "amount %s", in)
	}
}

func TestFormatAmountBeyondLimit(t *testing.T) {
	assert.Equal(t, "1,000,000,000,000,000.00€", FormatAmount(MaxAmount))
	assert.Equal(t, "-1,000,000,000,000,000.00€", FormatAmount(MaxAmount.Neg()))

	huge := decimal.RequireFromString("100000000000000000000.5")
	assert.Equal(t, "100000000000000000000.50€", FormatAmount(huge))
	assert.Equal(t, "-100000000000000000000.50€", FormatAmount(huge.Neg()))
}
