package offer_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polisave/internal/offer"
)

func TestParseNumber_PolishFormats(t *testing.T) {
	cases := map[string]float64{
		"1 234,56":    1234.56,
		"1.234,56":    1234.56,
		"1 234 567,8": 1234567.8,
		"120,50 zł":   120.50,
		"1200 zł":     1200,
		"99.99":       99.99,
		"1.234.567":   1234.567,
		"-15,5":       -15.5,
		"0":           0,
	}
	for input, want := range cases {
		got := offer.ParseNumber(input)
		require.NotNil(t, got, "input %q", input)
		assert.InDelta(t, want, *got, 1e-9, "input %q", input)
	}
}

func TestParseNumber_Unparseable(t *testing.T) {
	for _, input := range []any{"not a number", "", "-", "1,2,3", nil, true, []any{1}} {
		assert.Nil(t, offer.ParseNumber(input), "input %v", input)
	}
}

func TestParseNumber_NumericTypes(t *testing.T) {
	require.NotNil(t, offer.ParseNumber(float64(12.5)))
	assert.Equal(t, 12.5, *offer.ParseNumber(float64(12.5)))

	require.NotNil(t, offer.ParseNumber(int(7)))
	assert.Equal(t, 7.0, *offer.ParseNumber(int(7)))

	require.NotNil(t, offer.ParseNumber(int64(8)))
	assert.Equal(t, 8.0, *offer.ParseNumber(int64(8)))
}

func TestParseNumber_NonFinite(t *testing.T) {
	assert.Nil(t, offer.ParseNumber(math.NaN()))
	assert.Nil(t, offer.ParseNumber(math.Inf(1)))
}

func TestParseNumber_ZeroIsValid(t *testing.T) {
	got := offer.ParseNumber("0,00")
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)
}
