package mathutil_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sunridge-network/settled/pkg/mathutil"
)

func TestCheckedOps(t *testing.T) {
	t.Parallel()

	sum, err := mathutil.CheckedAdd(1, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(3), sum)

	_, err = mathutil.CheckedAdd(math.MaxUint64, 1)
	require.ErrorIs(t, err, mathutil.ErrOverflow)

	diff, err := mathutil.CheckedSub(10, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(6), diff)

	_, err = mathutil.CheckedSub(4, 10)
	require.ErrorIs(t, err, mathutil.ErrUnderflow)

	prod, err := mathutil.CheckedMul(1<<32, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<33), prod)

	_, err = mathutil.CheckedMul(math.MaxUint64, 2)
	require.ErrorIs(t, err, mathutil.ErrOverflow)

	require.Equal(t, uint64(0), mathutil.SaturatingSub(4, 10))
	require.Equal(t, uint64(6), mathutil.SaturatingSub(10, 4))
}

func TestPlusLessFee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		amount       uint64
		bps          uint64
		expectedFee  uint64
		expectedPlus uint64
	}{
		{"quarter_percent", 100000, 25, 250, 100250},
		{"one_percent", 100000, 100, 1000, 101000},
		{"fee_floored", 999, 25, 2, 1001},
		{"zero_amount", 0, 25, 0, 0},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			withFee, fee, err := mathutil.PlusFee(tt.amount, tt.bps)
			require.NoError(t, err)
			require.Equal(t, tt.expectedFee, fee)
			require.Equal(t, tt.expectedPlus, withFee)

			withoutFee, fee, err := mathutil.LessFee(tt.amount, tt.bps)
			require.NoError(t, err)
			require.Equal(t, tt.expectedFee, fee)
			require.Equal(t, tt.amount-fee, withoutFee)
		})
	}
}

func TestRatioBounds(t *testing.T) {
	t.Parallel()

	// Nominal price 200/10 = 20 quote per base.
	nominal := mathutil.NewRatio(200, 10)

	tests := []struct {
		name         string
		offered      mathutil.Ratio
		toleranceBps uint32
		withinUpper  bool
		withinLower  bool
	}{
		{"exact", mathutil.NewRatio(200, 10), 0, true, true},
		{"better_for_buyer", mathutil.NewRatio(199, 10), 100, true, true},
		{"better_beyond_tolerance", mathutil.NewRatio(190, 10), 100, true, false},
		{"worse_within_tolerance", mathutil.NewRatio(201, 10), 100, true, true},
		{"worse_beyond_tolerance", mathutil.NewRatio(205, 10), 100, false, true},
		{"two_percent_off_vs_one", mathutil.NewRatio(204, 10), 100, false, true},
		{"half_percent_off_vs_one", mathutil.NewRatio(201, 10), 100, true, true},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(
				t, tt.withinUpper, tt.offered.WithinUpperBound(nominal, tt.toleranceBps),
			)
			require.Equal(
				t, tt.withinLower, tt.offered.WithinLowerBound(nominal, tt.toleranceBps),
			)
		})
	}
}

func TestRatioLargeBalances(t *testing.T) {
	t.Parallel()

	// Cross-multiplication must not lose precision on amounts close to the
	// uint64 range.
	huge := uint64(math.MaxUint64 - 1)
	nominal := mathutil.NewRatio(huge, huge)
	offered := mathutil.NewRatio(huge, huge-1)

	require.False(t, offered.WithinUpperBound(nominal, 0))
	require.True(t, offered.WithinUpperBound(nominal, 1))
}
