package inmemory

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/internal/core/ports"
)

type orderInmemoryStore struct {
	orders        map[string]domain.Order
	ordersByOwner map[string][]string
	locker        *sync.Mutex
}

type sunriseInmemoryStore struct {
	pools    map[uint32]domain.SunrisePool
	leftover uint64
	locker   *sync.Mutex
}

type rewardInmemoryStore struct {
	// account -> epoch -> accumulated amount.
	rewards map[string]map[uint64]uint64
	locker  *sync.Mutex
}

type priceInmemoryStore struct {
	prices map[string]decimal.Decimal
	locker *sync.Mutex
}

type repoManager struct {
	orderRepository   domain.OrderRepository
	sunriseRepository domain.SunriseRepository
	rewardRepository  domain.RewardRepository
	priceRepository   domain.PriceRepository
}

// NewRepoManager returns a RepoManager backed by in-memory stores, with
// the given bound on the per-owner open-order index.
func NewRepoManager(maxOrdersPerOwner int) ports.RepoManager {
	orderStore := &orderInmemoryStore{
		orders:        make(map[string]domain.Order),
		ordersByOwner: make(map[string][]string),
		locker:        &sync.Mutex{},
	}
	sunriseStore := &sunriseInmemoryStore{
		pools:  make(map[uint32]domain.SunrisePool),
		locker: &sync.Mutex{},
	}
	rewardStore := &rewardInmemoryStore{
		rewards: make(map[string]map[uint64]uint64),
		locker:  &sync.Mutex{},
	}
	priceStore := &priceInmemoryStore{
		prices: make(map[string]decimal.Decimal),
		locker: &sync.Mutex{},
	}

	return &repoManager{
		orderRepository:   newOrderRepositoryImpl(orderStore, maxOrdersPerOwner),
		sunriseRepository: newSunriseRepositoryImpl(sunriseStore),
		rewardRepository:  newRewardRepositoryImpl(rewardStore),
		priceRepository:   newPriceRepositoryImpl(priceStore),
	}
}

func (m *repoManager) OrderRepository() domain.OrderRepository {
	return m.orderRepository
}

func (m *repoManager) SunriseRepository() domain.SunriseRepository {
	return m.sunriseRepository
}

func (m *repoManager) RewardRepository() domain.RewardRepository {
	return m.rewardRepository
}

func (m *repoManager) PriceRepository() domain.PriceRepository {
	return m.priceRepository
}

func (m *repoManager) Close() {}
