package mathutil

import "math/big"

// Ratio is an exact price expressed as the quotient of two uint64 amounts.
// Comparisons are done via big.Int cross-multiplication so that no
// precision is lost on large balances.
type Ratio struct {
	Num uint64
	Den uint64
}

func NewRatio(num, den uint64) Ratio {
	return Ratio{Num: num, Den: den}
}

// IsZero returns whether the ratio has a null numerator or denominator.
func (r Ratio) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

// WithinUpperBound reports whether r <= bound * (1 + toleranceBps/10000),
// ie. r.Num * bound.Den * 10000 <= bound.Num * r.Den * (10000 + tol).
func (r Ratio) WithinUpperBound(bound Ratio, toleranceBps uint32) bool {
	lhs := crossMul(r.Num, bound.Den, BpsDenominator)
	rhs := crossMul(bound.Num, r.Den, BpsDenominator+uint64(toleranceBps))
	return lhs.Cmp(rhs) <= 0
}

// WithinLowerBound reports whether r >= bound * (1 - toleranceBps/10000).
func (r Ratio) WithinLowerBound(bound Ratio, toleranceBps uint32) bool {
	tol := uint64(toleranceBps)
	if tol >= BpsDenominator {
		return true
	}
	lhs := crossMul(r.Num, bound.Den, BpsDenominator)
	rhs := crossMul(bound.Num, r.Den, BpsDenominator-tol)
	return lhs.Cmp(rhs) >= 0
}

func crossMul(x, y, z uint64) *big.Int {
	res := new(big.Int).SetUint64(x)
	res.Mul(res, new(big.Int).SetUint64(y))
	return res.Mul(res, new(big.Int).SetUint64(z))
}
