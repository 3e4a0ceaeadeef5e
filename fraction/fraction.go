/*
Package fraction provides an exact rational number type for dose amounts.

PURPOSE:
  Drug quantities (half a tablet, 1 1/4 doses) must never pick up floating
  point rounding errors. Fraction keeps a numerator/denominator pair in lowest
  terms and only converts to float64 or decimal when explicitly asked.

INVARIANTS:
  - Denominator > 0
  - Numerator and denominator share no factor except 1
  - The sign lives entirely in the numerator

  The zero value is a valid Fraction equal to Zero.

OVERFLOW:
  Numerator and denominator are int64. Constructors and Parse reject values
  that overflow, but Add and Sub wrap silently when the common denominator or
  the scaled numerators exceed int64.

COMPARISON:
  Cmp and Equal compare the float64 values of both fractions. Because every
  constructor reduces, two equal rationals always have identical float64
  values, but Cmp inherits float64's resolution for very close values.

USAGE:
  half := fraction.MustNew(1, 2)
  total := half.Add(fraction.FromInt(1))   // 3/2
  total.Text(true)                        // "1 1/2"
  total.Text(false)                       // "3/2"
  f, err := fraction.Parse("1 1/2")       // 3/2

SEE ALSO:
  - parse.go: Text grammar
  - drug/drug.go: Dose amounts and current supply
*/
package fraction

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rxdose/dose-engine/generic"
)

// Fraction is an immutable signed rational number in lowest terms.
type Fraction struct {
	num int64
	den int64
}

// Zero is the fraction 0/1.
var Zero = Fraction{num: 0, den: 1}

// =============================================================================
// CONSTRUCTORS - Every path reduces
// =============================================================================

// FromInt returns the whole number w.
func FromInt(w int64) Fraction {
	return Fraction{num: w, den: 1}
}

// New returns numerator/denominator in lowest terms. A negative value is
// expressed through the numerator; the denominator must be positive.
func New(numerator, denominator int64) (Fraction, error) {
	return NewMixed(0, numerator, denominator)
}

// NewMixed returns the mixed number "whole numerator/denominator". For negative
// values only whole carries the sign: NewMixed(-1, 1, 2) is -3/2.
func NewMixed(whole, numerator, denominator int64) (Fraction, error) {
	if denominator <= 0 {
		return Zero, generic.InvalidArgument("denominator", denominator, "must be greater than zero")
	}
	if whole != 0 && numerator < 0 {
		return Zero, generic.InvalidArgument("numerator", numerator, "must not be negative if whole is non-zero")
	}

	scaled, ok := mulChecked(whole, denominator)
	if !ok {
		return Zero, generic.InvalidArgument("whole", whole, "overflows int64")
	}
	if whole < 0 {
		numerator = -numerator
	}
	n, ok := addChecked(scaled, numerator)
	if !ok {
		return Zero, generic.InvalidArgument("numerator", numerator, "overflows int64")
	}
	return reduce(n, denominator), nil
}

// MustNew is like New but panics on an invalid denominator. Intended for
// constants and tests.
func MustNew(numerator, denominator int64) Fraction {
	f, err := New(numerator, denominator)
	if err != nil {
		panic(err)
	}
	return f
}

func reduce(n, d int64) Fraction {
	divisor := gcd(abs(n), d)
	return Fraction{num: n / divisor, den: d / divisor}
}

// =============================================================================
// ACCESSORS
// =============================================================================

func (f Fraction) Num() int64 { return f.num }

func (f Fraction) Den() int64 {
	if f.den == 0 {
		return 1
	}
	return f.den
}

func (f Fraction) IsZero() bool     { return f.num == 0 }
func (f Fraction) IsNegative() bool { return f.num < 0 }

// =============================================================================
// ARITHMETIC
// =============================================================================

// Add returns f + other.
func (f Fraction) Add(other Fraction) Fraction {
	fd, od := f.Den(), other.Den()
	if fd == od {
		return reduce(f.num+other.num, fd)
	}

	l := lcm(fd, od)
	return reduce(f.num*(l/fd)+other.num*(l/od), l)
}

// Sub returns f - other.
func (f Fraction) Sub(other Fraction) Fraction { return f.Add(other.Neg()) }

// Neg returns -f.
func (f Fraction) Neg() Fraction { return Fraction{num: -f.num, den: f.Den()} }

// AddInt returns f + n.
func (f Fraction) AddInt(n int64) Fraction { return f.Add(FromInt(n)) }

// SubInt returns f - n.
func (f Fraction) SubInt(n int64) Fraction { return f.Sub(FromInt(n)) }

// =============================================================================
// COMPARISON
// =============================================================================

// Cmp returns -1, 0 or +1 depending on whether f is less than, equal to or
// greater than other. Both sides are compared as float64 values.
func (f Fraction) Cmp(other Fraction) int {
	a, b := f.Float64(), other.Float64()
	switch {
	case a == b:
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

// Equal reports whether Cmp returns 0.
func (f Fraction) Equal(other Fraction) bool { return f.Cmp(other) == 0 }

// =============================================================================
// CONVERSIONS
// =============================================================================

func (f Fraction) Float64() float64 { return float64(f.num) / float64(f.Den()) }
func (f Fraction) Float32() float32 { return float32(f.Float64()) }

// Int64 rounds to the nearest integer, halves away from zero.
func (f Fraction) Int64() int64 { return int64(math.Round(f.Float64())) }

// Decimal converts to a decimal, rounding non-terminating expansions at
// decimal.DivisionPrecision places.
func (f Fraction) Decimal() decimal.Decimal {
	return decimal.NewFromInt(f.num).Div(decimal.NewFromInt(f.Den()))
}

// =============================================================================
// TEXT
// =============================================================================

// DisplayMixedNumbers is the mode String uses.
var DisplayMixedNumbers = true

// Text renders f either as a mixed number ("1 1/2") or as a simple fraction
// ("3/2"). Whole numbers are always rendered as integers.
func (f Fraction) Text(mixed bool) string {
	den := f.Den()
	if den == 1 {
		return strconv.FormatInt(f.num, 10)
	}

	whole := f.num / den
	rem := f.num % den
	if rem == 0 {
		return strconv.FormatInt(whole, 10)
	}
	if !mixed {
		return strconv.FormatInt(f.num, 10) + "/" + strconv.FormatInt(den, 10)
	}
	if whole == 0 {
		return strconv.FormatInt(rem, 10) + "/" + strconv.FormatInt(den, 10)
	}
	return strconv.FormatInt(whole, 10) + " " + strconv.FormatInt(abs(rem), 10) + "/" + strconv.FormatInt(den, 10)
}

func (f Fraction) String() string { return f.Text(DisplayMixedNumbers) }

// MarshalText renders the simple (non-mixed) form.
func (f Fraction) MarshalText() ([]byte, error) {
	return []byte(f.Text(false)), nil
}

// UnmarshalText accepts anything Parse accepts.
func (f *Fraction) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// gcd returns the greatest common divisor; gcd(n, 0) = n.
func gcd(n1, n2 int64) int64 {
	for n2 != 0 {
		n1, n2 = n2, n1%n2
	}
	return n1
}

// lcm returns the least common multiple of two non-negative numbers.
func lcm(n1, n2 int64) int64 {
	if n1 == 0 || n2 == 0 {
		return 0
	}
	product := n1 * n2
	for {
		if n1 < n2 {
			n1, n2 = n2, n1
		}
		n1 %= n2
		if n1 == 0 {
			break
		}
	}
	return product / n2
}

// mulChecked returns a*b and false if the product overflows.
func mulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return c, false
	}
	return c, true
}

// addChecked returns a+b and false if the sum overflows.
func addChecked(a, b int64) (int64, bool) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return c, false
	}
	return c, true
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
