package stock

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multipos/internal/apperr"
)

func TestAddQuantity(t *testing.T) {
	got, err := AddQuantity(10, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, got)

	got, err = AddQuantity(MaxQuantity-1, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, got)

	for _, pair := range [][2]int{
		{MaxQuantity, 1},
		{math.MaxInt, math.MaxInt - 3},
		{10, math.MaxInt},
		{-1, 5},
		{5, -1},
	} {
		_, err := AddQuantity(pair[0], pair[1])
		assert.Equal(t, "quantity out of range", validationMessage(t, err), "%d + %d", pair[0], pair[1])
	}
}

func TestValidateMoney(t *testing.T) {
	for _, ok := range []string{"0", "0.5", "12.30", "9999999999.99", "7.100000"} {
		assert.NoError(t, ValidateMoney("price", decimal.RequireFromString(ok)), ok)
	}

	cases := map[string]string{
		"-0.01":          "must not be negative",
		"0.333":          "at most 2 decimal places",
		"1.0000000001":   "at most 2 decimal places",
		"10000000000":    "out of range",
		"12345678901234": "out of range",
	}
	for in, msg := range cases {
		var ve *apperr.ValidationError
		require.ErrorAs(t, ValidateMoney("price", decimal.RequireFromString(in)), &ve, in)
		assert.Equal(t, "price", ve.Field)
		assert.Equal(t, msg, ve.Message, in)
	}
}
