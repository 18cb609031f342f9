package valueobject

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalPlaces(t *testing.T) {
	tests := []struct {
		currency Currency
		want     int32
	}{
		{USD, 2},
		{EUR, 2},
		{JPY, 0},
		{KWD, 3},
		{BHD, 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.currency), func(t *testing.T) {
			got, err := DecimalPlaces(tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown code", func(t *testing.T) {
		_, err := DecimalPlaces("ZZZ")
		assert.True(t, errors.Is(err, ErrUnsupportedCurrency))
	})

	t.Run("CFA franc is tender", func(t *testing.T) {
		got, err := DecimalPlaces("XOF")
		require.NoError(t, err)
		assert.Equal(t, int32(0), got)
	})

	for _, code := range []Currency{"XXX", "XTS", "XAU", "XDR", "CLF"} {
		t.Run("rejects "+string(code), func(t *testing.T) {
			_, err := DecimalPlaces(code)
			assert.ErrorIs(t, err, ErrUnsupportedCurrency)
			assert.False(t, code.IsValid())
		})
	}
}

func TestParseCurrency(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		c, err := ParseCurrency(" eur ")
		require.NoError(t, err)
		assert.Equal(t, EUR, c)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseCurrency("dollars")
		assert.Error(t, err)
	})

	t.Run("rejects no-currency code", func(t *testing.T) {
		_, err := ParseCurrency("xxx")
		assert.ErrorIs(t, err, ErrUnsupportedCurrency)
	})
}
