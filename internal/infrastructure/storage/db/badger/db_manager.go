package dbbadger

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

// repoManager holds all the badgerhold stores in a single data structure.
type repoManager struct {
	store      *badgerhold.Store
	priceStore *badgerhold.Store

	orderRepository   domain.OrderRepository
	sunriseRepository domain.SunriseRepository
	rewardRepository  domain.RewardRepository
	priceRepository   domain.PriceRepository
}

// NewRepoManager opens (or creates if missing) the badger stores on disk.
// Orders, sunrise pools and rewards share a store, prices live in a
// dedicated one because the feeder rewrites them at a much higher rate.
func NewRepoManager(
	baseDbDir string, logger badger.Logger, maxOrdersPerOwner int,
) (ports.RepoManager, error) {
	mainDb, err := createDb(filepath.Join(baseDbDir, "main"), logger)
	if err != nil {
		return nil, fmt.Errorf("opening main db: %w", err)
	}

	priceDb, err := createDb(filepath.Join(baseDbDir, "prices"), logger)
	if err != nil {
		return nil, fmt.Errorf("opening prices db: %w", err)
	}

	return &repoManager{
		store:             mainDb,
		priceStore:        priceDb,
		orderRepository:   newOrderRepositoryImpl(mainDb, maxOrdersPerOwner),
		sunriseRepository: newSunriseRepositoryImpl(mainDb),
		rewardRepository:  newRewardRepositoryImpl(mainDb),
		priceRepository:   newPriceRepositoryImpl(priceDb),
	}, nil
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

func (m *repoManager) Close() {
	// nolint
	m.store.Close()
	// nolint
	m.priceStore.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	opts.Compression = 0

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
