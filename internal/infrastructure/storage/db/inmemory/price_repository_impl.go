package inmemory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sunridge-network/settled/internal/core/domain"
)

type priceRepositoryImpl struct {
	store *priceInmemoryStore
}

func newPriceRepositoryImpl(store *priceInmemoryStore) domain.PriceRepository {
	return &priceRepositoryImpl{store}
}

func (r *priceRepositoryImpl) UpdatePrice(
	_ context.Context, baseAsset, quoteAsset string, price decimal.Decimal,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.prices[priceKey(baseAsset, quoteAsset)] = price
	return nil
}

func (r *priceRepositoryImpl) GetPrice(
	_ context.Context, baseAsset, quoteAsset string,
) (decimal.Decimal, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	price, ok := r.store.prices[priceKey(baseAsset, quoteAsset)]
	if !ok {
		// No data is a zero valuation, not an error.
		return decimal.Zero, nil
	}
	return price, nil
}

func priceKey(baseAsset, quoteAsset string) string {
	return baseAsset + "/" + quoteAsset
}
