// Package money implements fixed-point monetary amounts in integer minor
// units (cents). All arithmetic is exact; rounding only happens at the
// explicit division points and always resolves half away from zero.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by Money.
const Scale = 2

// ErrInvalidAmount is returned when a value cannot be represented exactly
// in minor units (malformed string or more than Scale fractional digits).
var ErrInvalidAmount = errors.New("invalid monetary amount")

// Money is an amount in minor units. The zero value is zero money.
type Money struct {
	units int64
}

// Zero is the zero amount.
var Zero = Money{}

// FromUnits builds a Money from a minor-unit count.
func FromUnits(units int64) Money {
	return Money{units: units}
}

// FromString parses a decimal string such as "12.34". Values with more
// than Scale fractional digits are rejected with ErrInvalidAmount; callers
// that want rounding instead must opt in via FromStringRounded.
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	return FromDecimal(d)
}

// FromStringRounded parses a decimal string, rounding excess precision to
// the minor unit half away from zero. This is the explicit caller-chosen
// rounding policy; FromString is the strict variant.
func FromStringRounded(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	return FromDecimal(d.Round(Scale))
}

// MustFromString is FromString that panics on error. For constants and tests.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal converts a decimal amount. The value must be exactly
// representable at the minor-unit scale.
func FromDecimal(d decimal.Decimal) (Money, error) {
	shifted := d.Shift(Scale)
	if !shifted.IsInteger() {
		return Zero, ErrInvalidAmount
	}
	return Money{units: shifted.IntPart()}, nil
}

// Decimal returns the amount as a decimal value, for the database and
// wire edges where NUMERIC/string amounts live.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.units, -Scale)
}

// Units returns the raw minor-unit count.
func (m Money) Units() int64 {
	return m.units
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{units: m.units + o.units}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{units: m.units - o.units}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{units: -m.units}
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.units < 0 {
		return Money{units: -m.units}
	}
	return m
}

// Cmp compares m and o: -1 if m < o, 0 if equal, 1 if m > o.
func (m Money) Cmp(o Money) int {
	switch {
	case m.units < o.units:
		return -1
	case m.units > o.units:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether m is exactly zero.
func (m Money) IsZero() bool { return m.units == 0 }

// IsPositive reports whether m is strictly greater than zero.
func (m Money) IsPositive() bool { return m.units > 0 }

// IsNegative reports whether m is strictly less than zero.
func (m Money) IsNegative() bool { return m.units < 0 }

// String formats the amount with exactly Scale fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(Scale)
}

// MulRat returns m * num/den rounded to the minor unit half away from
// zero. den must be positive.
func (m Money) MulRat(num, den int64) Money {
	q, r := divEuclid(m.units*num, den)
	// Round half away from zero on the remainder.
	if 2*r >= den {
		if m.units*num >= 0 {
			q++
		} else {
			// For negative products euclidean division already floored;
			// half-away-from-zero means the boundary stays at the floor.
			if 2*r > den {
				q++
			}
		}
	}
	return Money{units: q}
}

// MulRatFloor returns the floor of m * num/den together with the
// non-negative remainder numerator (over den). Split calculators use the
// remainder for largest-remainder residual-cent correction; comparing raw
// remainders is valid because every share in one computation uses the
// same denominator.
func (m Money) MulRatFloor(num, den int64) (Money, int64) {
	q, r := divEuclid(m.units*num, den)
	return Money{units: q}, r
}

// SplitEqual divides m into n parts: every part gets base, and the first
// rem parts (by whatever order the caller fixes) get one extra minor unit.
// base*n + rem == m holds exactly for non-negative m.
func (m Money) SplitEqual(n int) (base Money, rem int64) {
	q, r := divEuclid(m.units, int64(n))
	return Money{units: q}, r
}

// divEuclid is floored division with a non-negative remainder.
func divEuclid(a, b int64) (q, r int64) {
	q = a / b
	r = a % b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}
