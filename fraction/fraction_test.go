package fraction_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxdose/dose-engine/fraction"
	"github.com/rxdose/dose-engine/generic"
)

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_ReducesToLowestTerms(t *testing.T) {
	for n := int64(-30); n <= 30; n++ {
		for d := int64(1); d <= 24; d++ {
			f, err := fraction.New(n, d)
			require.NoError(t, err)

			assert.Positive(t, f.Den(), "%d/%d", n, d)
			g := gcd(abs(f.Num()), f.Den())
			assert.Equal(t, int64(1), g, "%d/%d reduced to %d/%d", n, d, f.Num(), f.Den())
			assert.InDelta(t, float64(n)/float64(d), f.Float64(), 1e-12)
		}
	}
}

func TestNew_Examples(t *testing.T) {
	tests := []struct {
		num, den         int64
		wantNum, wantDen int64
	}{
		{2, 4, 1, 2},
		{6, 3, 2, 1},
		{-6, 4, -3, 2},
		{0, 7, 0, 1},
		{12, 18, 2, 3},
	}

	for _, tt := range tests {
		f, err := fraction.New(tt.num, tt.den)
		require.NoError(t, err)
		assert.Equal(t, tt.wantNum, f.Num())
		assert.Equal(t, tt.wantDen, f.Den())
	}
}

func TestNew_NonPositiveDenominator_Rejected(t *testing.T) {
	for _, n := range []int64{-3, 0, 1, 42} {
		_, err := fraction.New(n, 0)
		assert.ErrorIs(t, err, generic.ErrInvalidArgument)

		_, err = fraction.New(n, -2)
		assert.ErrorIs(t, err, generic.ErrInvalidArgument)
	}
}

func TestNewMixed(t *testing.T) {
	f, err := fraction.NewMixed(1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, fraction.MustNew(3, 2), f)

	f, err = fraction.NewMixed(-1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, fraction.MustNew(-3, 2), f)

	f, err = fraction.NewMixed(0, -1, 2)
	require.NoError(t, err)
	assert.Equal(t, fraction.MustNew(-1, 2), f)

	f, err = fraction.NewMixed(2, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, fraction.MustNew(5, 2), f)
}

func TestNewMixed_SignInBothParts_Rejected(t *testing.T) {
	for _, w := range []int64{-2, -1, 1, 5} {
		_, err := fraction.NewMixed(w, -1, 2)
		assert.ErrorIs(t, err, generic.ErrInvalidArgument, "whole=%d", w)
	}

	_, err := fraction.NewMixed(1, 1, 0)
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

func TestNewMixed_Overflow_Rejected(t *testing.T) {
	_, err := fraction.NewMixed(math.MaxInt64/2+1, 1, 3)
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)

	_, err = fraction.NewMixed(math.MinInt64/2, 1, 2)
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)

	_, err = fraction.NewMixed(math.MaxInt64, 1, 1)
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)

	f, err := fraction.NewMixed(math.MaxInt64/2-1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64-2), f.Num())
}

func TestParse_Overflow_IsFormatError(t *testing.T) {
	_, err := fraction.Parse("9223372036854775807 1/2")
	assert.ErrorIs(t, err, generic.ErrFormat)
}

func TestZeroValue_IsZero(t *testing.T) {
	var f fraction.Fraction
	assert.True(t, f.IsZero())
	assert.Equal(t, int64(1), f.Den())
	assert.Equal(t, "0", f.Text(true))
	assert.True(t, f.Equal(fraction.Zero))
	assert.Equal(t, fraction.MustNew(1, 2), f.Add(fraction.MustNew(1, 2)))
}

// =============================================================================
// ARITHMETIC
// =============================================================================

func TestAdd(t *testing.T) {
	tests := []struct {
		a, b, want fraction.Fraction
	}{
		{fraction.MustNew(1, 2), fraction.MustNew(1, 2), fraction.FromInt(1)},
		{fraction.MustNew(1, 4), fraction.MustNew(1, 6), fraction.MustNew(5, 12)},
		{fraction.MustNew(1, 3), fraction.MustNew(-1, 2), fraction.MustNew(-1, 6)},
		{fraction.FromInt(2), fraction.MustNew(3, 4), fraction.MustNew(11, 4)},
		{fraction.Zero, fraction.MustNew(7, 9), fraction.MustNew(7, 9)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.Add(tt.b), "%s + %s", tt.a, tt.b)
	}
}

func TestAdd_NegationIsIdentity(t *testing.T) {
	for _, f := range sampleFractions() {
		assert.Equal(t, fraction.FromInt(0), f.Add(f.Neg()), "%s", f)
	}
}

func TestAdd_Commutative(t *testing.T) {
	samples := sampleFractions()
	for _, a := range samples {
		for _, b := range samples {
			assert.Equal(t, a.Add(b), b.Add(a), "%s + %s", a, b)
		}
	}
}

func TestSub(t *testing.T) {
	assert.Equal(t, fraction.MustNew(1, 4), fraction.MustNew(3, 4).Sub(fraction.MustNew(1, 2)))
	assert.Equal(t, fraction.MustNew(-1, 4), fraction.MustNew(1, 4).Sub(fraction.MustNew(1, 2)))
	assert.Equal(t, fraction.MustNew(3, 2), fraction.MustNew(1, 2).AddInt(1))
	assert.Equal(t, fraction.MustNew(-1, 2), fraction.MustNew(1, 2).SubInt(1))
}

func TestNeg(t *testing.T) {
	f := fraction.MustNew(3, 7).Neg()
	assert.Equal(t, int64(-3), f.Num())
	assert.Equal(t, int64(7), f.Den())
	assert.True(t, f.IsNegative())
	assert.False(t, f.Neg().IsNegative())
}

// =============================================================================
// COMPARISON & CONVERSION
// =============================================================================

func TestCmp(t *testing.T) {
	assert.Equal(t, 0, fraction.MustNew(1, 3).Cmp(fraction.MustNew(2, 6)))
	assert.Equal(t, -1, fraction.MustNew(1, 3).Cmp(fraction.MustNew(1, 2)))
	assert.Equal(t, 1, fraction.MustNew(1, 2).Cmp(fraction.MustNew(-1, 2)))
	assert.Equal(t, -1, fraction.Zero.Cmp(fraction.MustNew(1, 1000)))
	assert.True(t, fraction.MustNew(4, 2).Equal(fraction.FromInt(2)))
}

func TestInt64_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int64(3), fraction.MustNew(5, 2).Int64())
	assert.Equal(t, int64(-3), fraction.MustNew(-5, 2).Int64())
	assert.Equal(t, int64(1), fraction.MustNew(4, 3).Int64())
	assert.Equal(t, int64(0), fraction.MustNew(1, 3).Int64())
}

func TestFloatConversions(t *testing.T) {
	assert.Equal(t, 0.25, fraction.MustNew(1, 4).Float64())
	assert.Equal(t, float32(0.75), fraction.MustNew(3, 4).Float32())
}

func TestDecimal(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1.5").Equal(fraction.MustNew(3, 2).Decimal()))
	assert.True(t, decimal.RequireFromString("-0.25").Equal(fraction.MustNew(-1, 4).Decimal()))
	assert.True(t, decimal.NewFromInt(4).Equal(fraction.FromInt(4).Decimal()))
}

// =============================================================================
// TEXT
// =============================================================================

func TestText(t *testing.T) {
	tests := []struct {
		f      fraction.Fraction
		mixed  string
		simple string
	}{
		{fraction.FromInt(3), "3", "3"},
		{fraction.FromInt(-3), "-3", "-3"},
		{fraction.Zero, "0", "0"},
		{fraction.MustNew(1, 2), "1/2", "1/2"},
		{fraction.MustNew(-1, 2), "-1/2", "-1/2"},
		{fraction.MustNew(3, 2), "1 1/2", "3/2"},
		{fraction.MustNew(-3, 2), "-1 1/2", "-3/2"},
		{fraction.MustNew(22, 7), "3 1/7", "22/7"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.mixed, tt.f.Text(true))
		assert.Equal(t, tt.simple, tt.f.Text(false))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want fraction.Fraction
	}{
		{"3", fraction.FromInt(3)},
		{"  -3  ", fraction.FromInt(-3)},
		{"1/2", fraction.MustNew(1, 2)},
		{"2/4", fraction.MustNew(1, 2)},
		{" 3 / 2 ", fraction.MustNew(3, 2)},
		{"-1/2", fraction.MustNew(-1, 2)},
		{"1 1/2", fraction.MustNew(3, 2)},
		{"  1   1/2  ", fraction.MustNew(3, 2)},
		{"-1 1/2", fraction.MustNew(-3, 2)},
		{"0 1/4", fraction.MustNew(1, 4)},
	}

	for _, tt := range tests {
		got, err := fraction.Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{"", "   ", "1/0", "1 1/0", "abc", "1/", "/2", "1/-2", "1 -1/2", "1.5", "1 2"} {
		_, err := fraction.Parse(in)
		assert.ErrorIs(t, err, generic.ErrFormat, "%q", in)

		var pe *fraction.ParseError
		assert.ErrorAs(t, err, &pe, "%q", in)
	}
}

func TestParse_RoundTripsText(t *testing.T) {
	for n := int64(-40); n <= 40; n++ {
		for d := int64(1); d <= 16; d++ {
			f := fraction.MustNew(n, d)
			for _, mixed := range []bool{true, false} {
				got, err := fraction.Parse(f.Text(mixed))
				require.NoError(t, err, f.Text(mixed))
				assert.Equal(t, f, got, f.Text(mixed))
			}
		}
	}
}

func TestJSON_UsesSimpleText(t *testing.T) {
	type payload struct {
		Dose fraction.Fraction `json:"dose"`
	}

	data, err := json.Marshal(payload{Dose: fraction.MustNew(3, 2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dose":"3/2"}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"dose":"1 1/4"}`), &p))
	assert.Equal(t, fraction.MustNew(5, 4), p.Dose)

	err = json.Unmarshal([]byte(`{"dose":"1/0"}`), &p)
	assert.ErrorIs(t, err, generic.ErrFormat)
}

// =============================================================================
// HELPERS
// =============================================================================

func sampleFractions() []fraction.Fraction {
	var out []fraction.Fraction
	for _, n := range []int64{-7, -3, -1, 0, 1, 2, 5, 9} {
		for _, d := range []int64{1, 2, 3, 4, 6, 9} {
			out = append(out, fraction.MustNew(n, d))
		}
	}
	return out
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
