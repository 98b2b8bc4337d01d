package dbbadger

import (
	"context"
	"sort"

	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// leftoverKey is the fixed key of the single leftover pool row.
const leftoverKey = "leftover"

type leftoverRow struct {
	Balance uint64
}

type sunriseRepositoryImpl struct {
	store *badgerhold.Store
}

func newSunriseRepositoryImpl(
	store *badgerhold.Store,
) domain.SunriseRepository {
	return &sunriseRepositoryImpl{store}
}

func (r *sunriseRepositoryImpl) AddPool(
	_ context.Context, pool *domain.SunrisePool,
) error {
	count, err := r.store.Count(&domain.SunrisePool{}, nil)
	if err != nil {
		return err
	}
	if int(count) >= domain.MaxSunrisePools {
		return domain.ErrSunriseCapacityExceeded
	}

	return r.store.Insert(pool.Id, *pool)
}

func (r *sunriseRepositoryImpl) GetPools(
	_ context.Context,
) ([]domain.SunrisePool, error) {
	var pools []domain.SunrisePool
	if err := r.store.Find(&pools, nil); err != nil {
		return nil, err
	}
	sort.Slice(pools, func(i, j int) bool {
		return pools[i].Id < pools[j].Id
	})
	return pools, nil
}

func (r *sunriseRepositoryImpl) UpdatePool(
	_ context.Context, id uint32,
	updateFn func(p *domain.SunrisePool) (*domain.SunrisePool, error),
) error {
	var pool domain.SunrisePool
	if err := r.store.Get(id, &pool); err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.ErrSunrisePoolNotFound
		}
		return err
	}

	updatedPool, err := updateFn(&pool)
	if err != nil {
		return err
	}

	return r.store.Update(updatedPool.Id, *updatedPool)
}

func (r *sunriseRepositoryImpl) GetLeftover(_ context.Context) (uint64, error) {
	var row leftoverRow
	if err := r.store.Get(leftoverKey, &row); err != nil {
		if err == badgerhold.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return row.Balance, nil
}

func (r *sunriseRepositoryImpl) UpdateLeftover(
	ctx context.Context, updateFn func(balance uint64) (uint64, error),
) error {
	balance, err := r.GetLeftover(ctx)
	if err != nil {
		return err
	}

	updatedBalance, err := updateFn(balance)
	if err != nil {
		return err
	}

	return r.store.Upsert(leftoverKey, leftoverRow{updatedBalance})
}
