package mathutil

// PlusFee returns an amount with a fee added, given a fee expressed in
// basis points (ie. 25 = 0.25%). The fee is floored so that the rate
// charged never exceeds the nominal one.
func PlusFee(amount, feeAsBasisPoint uint64) (withFee, calculatedFee uint64, err error) {
	calculatedFee, err = feeAmount(amount, feeAsBasisPoint)
	if err != nil {
		return 0, 0, err
	}
	withFee, err = CheckedAdd(amount, calculatedFee)
	if err != nil {
		return 0, 0, err
	}
	return
}

// LessFee returns an amount with a fee subtracted, given a fee expressed in
// basis points.
func LessFee(amount, feeAsBasisPoint uint64) (withoutFee, calculatedFee uint64, err error) {
	calculatedFee, err = feeAmount(amount, feeAsBasisPoint)
	if err != nil {
		return 0, 0, err
	}
	withoutFee, err = CheckedSub(amount, calculatedFee)
	if err != nil {
		return 0, 0, err
	}
	return
}

func feeAmount(amount, feeAsBasisPoint uint64) (uint64, error) {
	fee := Decimal(amount).
		Mul(Decimal(feeAsBasisPoint)).
		Div(Decimal(BpsDenominator)).
		Floor()
	return Uint64(fee)
}
