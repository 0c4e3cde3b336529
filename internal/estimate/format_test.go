package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{75000, "$75,000.00"},
		{3.5, "$3.50"},
		{1234567.891, "$1,234,567.89"},
		{1_500_000_000, "$1,500,000,000.00"},
		{-1250.5, "-$1,250.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in))
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{950, "$950"},
		{75000, "$75K"},
		{2_500_000, "$2.5M"},
		{3_100_000_000, "$3.1B"},
		{1_500_000_000, "$1.5B"},
		{999, "$999"},
		{999.6, "$1K"},
		{999_499, "$999K"},
		{999_999, "$1.0M"},
		{999_960_000, "$1.0B"},
		{-900_000, "-$900K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCompact(tt.in))
	}
}
