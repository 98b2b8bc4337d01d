package mathutil

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// BpsDenominator is the denominator for fees and tolerances expressed in
// basis points (ie. 25 = 0.25%).
var BpsDenominator = uint64(10000)

var (
	// ErrOverflow is returned by checked operations whose result does not
	// fit a uint64.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrUnderflow is returned by checked subtractions with a negative result.
	ErrUnderflow = errors.New("arithmetic underflow")
)

func init() {
	decimal.DivisionPrecision = 8
}

// CheckedAdd returns x + y or ErrOverflow.
func CheckedAdd(x, y uint64) (uint64, error) {
	z := x + y
	if z < x {
		return 0, ErrOverflow
	}
	return z, nil
}

// CheckedSub returns x - y or ErrUnderflow.
func CheckedSub(x, y uint64) (uint64, error) {
	if y > x {
		return 0, ErrUnderflow
	}
	return x - y, nil
}

// CheckedMul returns x * y or ErrOverflow.
func CheckedMul(x, y uint64) (uint64, error) {
	if x == 0 || y == 0 {
		return 0, nil
	}
	z := x * y
	if z/x != y {
		return 0, ErrOverflow
	}
	return z, nil
}

// SaturatingSub returns x - y, flooring at zero.
func SaturatingSub(x, y uint64) uint64 {
	if y > x {
		return 0
	}
	return x - y
}

// Decimal returns the given uint64 amount as a decimal.Decimal.
func Decimal(x uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0)
}

// Uint64 converts a non-negative decimal to uint64, flooring any fractional
// part. It returns ErrOverflow if the integral part does not fit a uint64
// and ErrUnderflow if the decimal is negative.
func Uint64(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() {
		return 0, ErrUnderflow
	}
	n := d.Floor().BigInt()
	if !n.IsUint64() {
		return 0, ErrOverflow
	}
	return n.Uint64(), nil
}
