package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		currency  string
		expected  int64
		expectErr bool
	}{
		{name: "Rupees to paise", amount: "12.34", currency: "INR", expected: 1234},
		{name: "Whole dollars", amount: "5", currency: "USD", expected: 500},
		{name: "Zero decimal currency", amount: "500", currency: "JPY", expected: 500},
		{name: "Too precise", amount: "1.005", currency: "USD", expectErr: true},
		{name: "Fractional yen", amount: "1.5", currency: "jpy", expectErr: true},
		{name: "Zero amount", amount: "0", currency: "USD", expectErr: true},
		{name: "Negative amount", amount: "-3", currency: "USD", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tt.amount), tt.currency)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, decimal.RequireFromString("12.34").Equal(FromMinorUnits(1234, "INR")))
	assert.True(t, decimal.NewFromInt(700).Equal(FromMinorUnits(700, "JPY")))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "10.50", Format(decimal.RequireFromString("10.5"), "USD"))
	assert.Equal(t, "300", Format(decimal.NewFromInt(300), "JPY"))
}
