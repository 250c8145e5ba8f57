package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatINR(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{name: "zero", amount: 0, want: "₹0"},
		{name: "below a thousand", amount: 999, want: "₹999"},
		{name: "thousands", amount: 5400, want: "₹5,400"},
		{name: "rounds half up", amount: 4319.5, want: "₹4,320"},
		{name: "millions", amount: 1250000, want: "₹1,250,000"},
		{name: "negative", amount: -500, want: "-₹500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatINR(tt.amount))
		})
	}
}
