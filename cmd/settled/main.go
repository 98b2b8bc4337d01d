package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sunridge-network/settled/internal/config"
	"github.com/sunridge-network/settled/internal/core/application/fee"
	"github.com/sunridge-network/settled/internal/core/application/pricer"
	"github.com/sunridge-network/settled/internal/core/application/pubsub"
	"github.com/sunridge-network/settled/internal/core/application/settlement"
	"github.com/sunridge-network/settled/internal/core/application/sunrise"
	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/internal/core/ports"
	coinbasefeeder "github.com/sunridge-network/settled/internal/infrastructure/feeder/coinbase"
	krakenfeeder "github.com/sunridge-network/settled/internal/infrastructure/feeder/kraken"
	inmemoryledger "github.com/sunridge-network/settled/internal/infrastructure/ledger/inmemory"
	"github.com/sunridge-network/settled/internal/infrastructure/oracle"
	webhookpubsub "github.com/sunridge-network/settled/internal/infrastructure/pubsub/webhook"
	dbbadger "github.com/sunridge-network/settled/internal/infrastructure/storage/db/badger"
	"github.com/sunridge-network/settled/internal/infrastructure/storage/db/inmemory"
	httpinterface "github.com/sunridge-network/settled/internal/interfaces/http"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	repoManager, err := newRepoManager()
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer repoManager.Close()

	if err := seedSunrisePools(repoManager); err != nil {
		log.WithError(err).Fatal("failed to seed sunrise pools")
	}

	ledger := inmemoryledger.NewLedger()

	priceOracle, err := oracle.NewPriceTable(repoManager)
	if err != nil {
		log.WithError(err).Fatal("failed to setup price oracle")
	}

	feeSvc, err := fee.NewService(
		priceOracle, config.GetString(config.ReferenceAssetKey), fee.Rates{
			StandardBps:    config.GetUint64(config.StandardFeeBpsKey),
			MakerMarketBps: config.GetUint64(config.MakerMarketFeeBpsKey),
			MakerLimitBps:  config.GetUint64(config.MakerLimitFeeBpsKey),
		},
	)
	if err != nil {
		log.WithError(err).Fatal("failed to setup fee service")
	}

	sunriseSvc, err := sunrise.NewService(
		repoManager, priceOracle, ledger,
		config.GetString(config.RewardAssetKey),
		decimal.NewFromFloat(config.GetFloat(config.LeftoverRebateKey)),
		config.GetDuration(config.EpochDurationKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to setup sunrise service")
	}

	securePubSub, err := webhookpubsub.NewWebhookPubSubService(
		config.GetDuration(config.WebhookTimeoutKey),
		config.GetInt(config.WebhookRequestsPerSecondKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to setup webhook pubsub")
	}
	pubsubSvc, err := pubsub.NewService(securePubSub)
	if err != nil {
		log.WithError(err).Fatal("failed to setup pubsub service")
	}

	settlementSvc, err := settlement.NewService(
		repoManager, ledger, feeSvc, sunriseSvc, pubsubSvc,
		config.GetString(config.FeeAccountKey),
		config.GetInt(config.MaxCounterFillsKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to setup settlement service")
	}

	pricerSvc, err := newPricerService(repoManager)
	if err != nil {
		log.WithError(err).Fatal("failed to setup pricer service")
	}
	go func() {
		if err := pricerSvc.Start(); err != nil {
			log.WithError(err).Error("pricer stopped with error")
		}
	}()
	defer pricerSvc.Stop()

	traderAddr := fmt.Sprintf(":%d", config.GetInt(config.TraderListeningPortKey))
	operatorAddr := fmt.Sprintf(":%d", config.GetInt(config.OperatorListeningPortKey))
	httpSvc, err := httpinterface.NewService(
		settlementSvc, sunriseSvc, pubsubSvc, pricerSvc, repoManager,
		traderAddr, operatorAddr,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to setup http interface")
	}

	go func() {
		if err := httpSvc.Start(); err != nil {
			log.WithError(err).Fatal("http interface stopped with error")
		}
	}()
	defer httpSvc.Stop()

	log.Info("daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down")
}

func newRepoManager() (ports.RepoManager, error) {
	if config.GetString(config.DBTypeKey) == config.DBInMemory {
		return inmemory.NewRepoManager(
			config.GetInt(config.MaxOrdersPerOwnerKey),
		), nil
	}

	dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
	return dbbadger.NewRepoManager(
		dbDir, log.New(), config.GetInt(config.MaxOrdersPerOwnerKey),
	)
}

// newPricerService wires the configured price feeder, if any. With no
// external source the pricer only serves manual price overrides.
func newPricerService(repoManager ports.RepoManager) (*pricer.Service, error) {
	var feeder ports.PriceFeeder
	var err error

	interval := config.GetDuration(config.FeedIntervalKey)
	switch config.GetString(config.PriceFeederKey) {
	case config.FeederKraken:
		feeder, err = krakenfeeder.NewPriceFeeder(interval)
	case config.FeederCoinbase:
		feeder, err = coinbasefeeder.NewPriceFeeder(interval)
	}
	if err != nil {
		return nil, err
	}

	return pricer.NewService(repoManager, feeder)
}

type sunrisePoolSeed struct {
	Id                    uint32 `json:"id"`
	Balance               uint64 `json:"balance"`
	TransactionsRemaining uint32 `json:"transactions_remaining"`
	MinimumTradeValue     uint64 `json:"minimum_trade_value"`
	Rebate                string `json:"rebate"`
}

// seedSunrisePools loads the pools from the configured JSON file into an
// empty store. A store that already has pools is left untouched.
func seedSunrisePools(repoManager ports.RepoManager) error {
	seedFile := config.GetString(config.SunrisePoolsKey)
	if seedFile == "" {
		return nil
	}

	ctx := context.Background()
	pools, err := repoManager.SunriseRepository().GetPools(ctx)
	if err != nil {
		return err
	}
	if len(pools) > 0 {
		return nil
	}

	buf, err := os.ReadFile(seedFile)
	if err != nil {
		return err
	}
	var seeds []sunrisePoolSeed
	if err := json.Unmarshal(buf, &seeds); err != nil {
		return err
	}

	for _, seed := range seeds {
		if _, err := decimal.NewFromString(seed.Rebate); err != nil {
			return fmt.Errorf("invalid rebate for pool %d: %s", seed.Id, err)
		}
		if err := repoManager.SunriseRepository().AddPool(
			ctx, &domain.SunrisePool{
				Id:                    seed.Id,
				Balance:               seed.Balance,
				TransactionsRemaining: seed.TransactionsRemaining,
				MinimumTradeValue:     seed.MinimumTradeValue,
				Rebate:                seed.Rebate,
			},
		); err != nil {
			return err
		}
	}

	log.Infof("seeded %d sunrise pool(s)", len(seeds))
	return nil
}
