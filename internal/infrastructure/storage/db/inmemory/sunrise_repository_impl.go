package inmemory

import (
	"context"
	"sort"

	"github.com/sunridge-network/settled/internal/core/domain"
)

type sunriseRepositoryImpl struct {
	store *sunriseInmemoryStore
}

func newSunriseRepositoryImpl(
	store *sunriseInmemoryStore,
) domain.SunriseRepository {
	return &sunriseRepositoryImpl{store}
}

func (r *sunriseRepositoryImpl) AddPool(
	_ context.Context, pool *domain.SunrisePool,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if len(r.store.pools) >= domain.MaxSunrisePools {
		return domain.ErrSunriseCapacityExceeded
	}

	r.store.pools[pool.Id] = *pool
	return nil
}

func (r *sunriseRepositoryImpl) GetPools(
	_ context.Context,
) ([]domain.SunrisePool, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	pools := make([]domain.SunrisePool, 0, len(r.store.pools))
	for _, pool := range r.store.pools {
		pools = append(pools, pool)
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
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	currentPool, ok := r.store.pools[id]
	if !ok {
		return domain.ErrSunrisePoolNotFound
	}

	updatedPool, err := updateFn(&currentPool)
	if err != nil {
		return err
	}

	r.store.pools[updatedPool.Id] = *updatedPool
	return nil
}

func (r *sunriseRepositoryImpl) GetLeftover(_ context.Context) (uint64, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.store.leftover, nil
}

func (r *sunriseRepositoryImpl) UpdateLeftover(
	_ context.Context, updateFn func(balance uint64) (uint64, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	updatedBalance, err := updateFn(r.store.leftover)
	if err != nil {
		return err
	}

	r.store.leftover = updatedBalance
	return nil
}
