package dbbadger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// priceRow serializes the rate as a string, decimal.Decimal does not
// survive the store's default encoding.
type priceRow struct {
	Pair  string
	Price string
}

type priceRepositoryImpl struct {
	store *badgerhold.Store
}

func newPriceRepositoryImpl(store *badgerhold.Store) domain.PriceRepository {
	return &priceRepositoryImpl{store}
}

func (r *priceRepositoryImpl) UpdatePrice(
	_ context.Context, baseAsset, quoteAsset string, price decimal.Decimal,
) error {
	pair := priceKey(baseAsset, quoteAsset)
	return r.store.Upsert(pair, priceRow{Pair: pair, Price: price.String()})
}

func (r *priceRepositoryImpl) GetPrice(
	_ context.Context, baseAsset, quoteAsset string,
) (decimal.Decimal, error) {
	var row priceRow
	if err := r.store.Get(priceKey(baseAsset, quoteAsset), &row); err != nil {
		if err == badgerhold.ErrNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	price, err := decimal.NewFromString(row.Price)
	if err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

func priceKey(baseAsset, quoteAsset string) string {
	return baseAsset + "/" + quoteAsset
}
