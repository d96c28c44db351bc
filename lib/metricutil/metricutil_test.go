package metricutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"₹1,234.50", "1234.5", true},
		{"â‚¹2,000", "2000", true},
		{"98.7%", "98.7", true},
		{" 42 ", "42", true},
		{"-12.5%", "-12.5", true},
		{"-", "0", false},
		{"", "0", false},
		{"N/A", "0", false},
	}

	for _, c := range cases {
		d, ok := TryParseNumber(c.in)
		require.Equal(t, c.ok, ok, "input %q", c.in)
		require.True(t, d.Equal(decimal.RequireFromString(c.want)), "input %q got %s", c.in, d)
		require.True(t, ParseNumber(c.in).Equal(d))
	}
}
