package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	t.Parallel()

	t.Run("parses whole and fractional amounts", func(t *testing.T) {
		t.Parallel()
		m, err := FromString("12.34")
		require.NoError(t, err)
		require.Equal(t, int64(1234), m.Units())

		m, err = FromString("100")
		require.NoError(t, err)
		require.Equal(t, int64(10000), m.Units())

		m, err = FromString("0.05")
		require.NoError(t, err)
		require.Equal(t, int64(5), m.Units())
	})

	t.Run("parses negative amounts", func(t *testing.T) {
		t.Parallel()
		m, err := FromString("-7.50")
		require.NoError(t, err)
		require.Equal(t, int64(-750), m.Units())
	})

	t.Run("rejects excess precision", func(t *testing.T) {
		t.Parallel()
		_, err := FromString("10.005")
		require.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects malformed strings", func(t *testing.T) {
		t.Parallel()
		for _, s := range []string{"", "abc", "1.2.3", "10,00"} {
			_, err := FromString(s)
			require.ErrorIs(t, err, ErrInvalidAmount, "input %q", s)
		}
	})
}

func TestFromStringRounded(t *testing.T) {
	t.Parallel()

	t.Run("rounds half away from zero", func(t *testing.T) {
		t.Parallel()
		m, err := FromStringRounded("10.005")
		require.NoError(t, err)
		require.Equal(t, int64(1001), m.Units())

		m, err = FromStringRounded("-10.005")
		require.NoError(t, err)
		require.Equal(t, int64(-1001), m.Units())
	})

	t.Run("leaves exact amounts alone", func(t *testing.T) {
		t.Parallel()
		m, err := FromStringRounded("10.01")
		require.NoError(t, err)
		require.Equal(t, int64(1001), m.Units())
	})
}

func TestDecimalBridge(t *testing.T) {
	t.Parallel()

	t.Run("round-trips through decimal", func(t *testing.T) {
		t.Parallel()
		m := MustFromString("42.07")
		d := m.Decimal()
		back, err := FromDecimal(d)
		require.NoError(t, err)
		require.Equal(t, m, back)
	})

	t.Run("rejects sub-cent decimals", func(t *testing.T) {
		t.Parallel()
		d := decimal.RequireFromString("1.001")
		_, err := FromDecimal(d)
		require.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestArithmetic(t *testing.T) {
	t.Parallel()

	a := MustFromString("10.00")
	b := MustFromString("3.33")

	require.Equal(t, "13.33", a.Add(b).String())
	require.Equal(t, "6.67", a.Sub(b).String())
	require.Equal(t, "-10.00", a.Neg().String())
	require.Equal(t, "10.00", a.Neg().Abs().String())
	require.Equal(t, 1, a.Cmp(b))
	require.Equal(t, -1, b.Cmp(a))
	require.Equal(t, 0, a.Cmp(MustFromString("10.00")))
	require.True(t, Zero.IsZero())
	require.True(t, a.IsPositive())
	require.True(t, a.Neg().IsNegative())
}

func TestMulRat(t *testing.T) {
	t.Parallel()

	t.Run("rounds half away from zero", func(t *testing.T) {
		t.Parallel()
		// 10.01 / 2 = 5.005 -> 5.01
		require.Equal(t, int64(501), FromUnits(1001).MulRat(1, 2).Units())
		// -10.01 / 2 = -5.005 -> -5.01
		require.Equal(t, int64(-501), FromUnits(-1001).MulRat(1, 2).Units())
		// 33.33% of 100.00
		require.Equal(t, int64(3333), FromUnits(10000).MulRat(3333, 10000).Units())
	})

	t.Run("exact divisions have no rounding", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, int64(600), FromUnits(1200).MulRat(1, 2).Units())
	})
}

func TestMulRatFloor(t *testing.T) {
	t.Parallel()

	q, r := FromUnits(1000).MulRatFloor(1, 3)
	require.Equal(t, int64(333), q.Units())
	require.Equal(t, int64(1), r)

	q, r = FromUnits(1200).MulRatFloor(2, 6)
	require.Equal(t, int64(400), q.Units())
	require.Equal(t, int64(0), r)
}

func TestSplitEqual(t *testing.T) {
	t.Parallel()

	t.Run("distributes remainder cents", func(t *testing.T) {
		t.Parallel()
		base, rem := FromUnits(1000).SplitEqual(3)
		require.Equal(t, int64(333), base.Units())
		require.Equal(t, int64(1), rem)
	})

	t.Run("single part gets everything", func(t *testing.T) {
		t.Parallel()
		base, rem := FromUnits(10000).SplitEqual(1)
		require.Equal(t, int64(10000), base.Units())
		require.Equal(t, int64(0), rem)
	})

	t.Run("negative amounts floor toward minus infinity", func(t *testing.T) {
		t.Parallel()
		base, rem := FromUnits(-100).SplitEqual(3)
		// -100 = 3*(-34) + 2
		require.Equal(t, int64(-34), base.Units())
		require.Equal(t, int64(2), rem)
	})
}
