package oracle

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sunridge-network/settled/internal/core/ports"
)

type priceTable struct {
	repoManager ports.RepoManager
}

// NewPriceTable returns a PriceOracle backed by the oracle price table in
// storage.
func NewPriceTable(repoManager ports.RepoManager) (ports.PriceOracle, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	return &priceTable{repoManager}, nil
}

func (t *priceTable) Rate(
	ctx context.Context, baseAsset, quoteAsset string,
) (decimal.Decimal, error) {
	if baseAsset == quoteAsset {
		return decimal.NewFromInt(1), nil
	}
	return t.repoManager.PriceRepository().GetPrice(ctx, baseAsset, quoteAsset)
}
