package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when an order id is not in the store.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderInvalidStatus is returned when attempting to settle or cancel
	// an order that is not in Pending or PartiallyFilled status.
	ErrOrderInvalidStatus = errors.New("order is not in a fillable status")
	// ErrOrderSameAsset is returned when creating an order whose asset legs
	// are equal.
	ErrOrderSameAsset = errors.New("order assets must differ")
	// ErrOrderNullAmount is returned when creating an order with a null leg.
	ErrOrderNullAmount = errors.New("order amounts must not be null")
	// ErrOrderInvalidSlippage is returned for a slippage tolerance above 100%.
	ErrOrderInvalidSlippage = errors.New("slippage tolerance out of range")
	// ErrOrderCapacityExceeded is returned when an owner's open-order index
	// is at its bound.
	ErrOrderCapacityExceeded = errors.New("too many open orders for owner")
	// ErrOrderAccessDenied is returned when cancelling an order not owned by
	// the requester.
	ErrOrderAccessDenied = errors.New("order does not belong to requester")
	// ErrSlippageExceeded is returned when a proposed fill prices the
	// primary order outside its slippage tolerance.
	ErrSlippageExceeded = errors.New("offer price exceeds slippage tolerance")
	// ErrCannotDeposit is returned when one of the accounts credited by a
	// settlement cannot receive the incoming asset.
	ErrCannotDeposit = errors.New("account cannot receive the incoming asset")
	// ErrOverflow is returned when a fill would push the cumulative filled
	// amounts of an order past its requested amounts, or when fee math
	// overflows the amount width.
	ErrOverflow = errors.New("amount overflow")

	// ErrSunrisePoolNotFound is returned when a pool id is not in the store.
	ErrSunrisePoolNotFound = errors.New("sunrise pool not found")
	// ErrSunriseCapacityExceeded is returned when adding a pool past the
	// fixed capacity of the collection.
	ErrSunriseCapacityExceeded = errors.New("too many sunrise pools")
	// ErrRewardNotFound is returned when claiming a reward accumulator that
	// does not exist.
	ErrRewardNotFound = errors.New("no reward to claim")

	// ErrCounterOrderNotFound ...
	ErrCounterOrderNotFound = errors.New("counter order not found")
	// ErrCounterSlippageExceeded is returned when a proposed fill prices a
	// counter order outside its own slippage tolerance.
	ErrCounterSlippageExceeded = errors.New("offer price exceeds counter order slippage tolerance")
	// ErrInvalidCounterOrder is returned when a counter order has mismatching
	// asset legs, a non fillable status or not enough unfilled capacity.
	ErrInvalidCounterOrder = errors.New("counter order cannot serve the proposed fill")
	// ErrInsufficientFunds is returned when a counter order's owner does not
	// hold enough escrowed funds to honor the proposed fill.
	ErrInsufficientFunds = errors.New("insufficient held funds")
)

// CounterFillError decorates a validation error with the index of the
// offending counter fill. Nothing has been mutated when it is returned.
type CounterFillError struct {
	Index int
	Err   error
}

func (e *CounterFillError) Error() string {
	return fmt.Sprintf("counter fill %d: %s", e.Index, e.Err)
}

func (e *CounterFillError) Unwrap() error { return e.Err }

// ExecutionError reports a failure that occurred after fund movement had
// already started. Index is the offending counter fill; fills with a lower
// index have been committed. An Index of -1 marks a failure past the last
// fill, while closing out the primary order. Callers must reconcile state
// instead of blindly retrying.
type ExecutionError struct {
	Index int
	Err   error
}

func (e *ExecutionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf(
			"settlement executed, failed closing the primary order: %s", e.Err,
		)
	}
	return fmt.Sprintf(
		"settlement partially executed, failed at counter fill %d: %s",
		e.Index, e.Err,
	)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
