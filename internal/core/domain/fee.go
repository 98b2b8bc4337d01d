package domain

import "github.com/shopspring/decimal"

// Fee is the value object produced by the fee calculator for a single fill
// leg. It is immutable once computed.
type Fee struct {
	// Asset the fee is denominated in, ie. the payer's sending asset.
	Asset string
	// Amount is the gross amount the fee was computed on.
	Amount uint64
	// Fee is the fee amount in units of Asset.
	Fee uint64
	// FeeValue is the fee valued in the reference currency through the
	// price oracle. Zero when no price is available.
	FeeValue decimal.Decimal
	// AmountValue is the gross amount valued in the reference currency.
	// Zero when no price is available.
	AmountValue decimal.Decimal
}
