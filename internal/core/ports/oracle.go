package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceOracle converts amounts between assets through an oracle-fed price
// table.
type PriceOracle interface {
	// Rate returns how much of quoteAsset one unit of baseAsset is worth.
	// It returns a unity rate if the assets are equal and a zero decimal
	// if no price is known for the pair; a zero rate is the "no data"
	// sentinel, never an error.
	Rate(ctx context.Context, baseAsset, quoteAsset string) (decimal.Decimal, error)
}
