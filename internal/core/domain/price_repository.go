package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceRepository defines the storage of the oracle price table, a mapping
// from (base asset, quote asset) to the latest exchange rate pushed by the
// price feeder or by a manual override.
type PriceRepository interface {
	// UpdatePrice stores the rate for the given pair.
	UpdatePrice(
		ctx context.Context, baseAsset, quoteAsset string, price decimal.Decimal,
	) error
	// GetPrice returns the stored rate for the given pair, or a zero
	// decimal if no rate is known. An unset price is not an error, callers
	// must tolerate a zero valuation.
	GetPrice(
		ctx context.Context, baseAsset, quoteAsset string,
	) (decimal.Decimal, error)
}
