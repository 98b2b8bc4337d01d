package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// TraderListeningPortKey is the port where the trader HTTP interface
	// will listen on.
	TraderListeningPortKey = "TRADER_LISTENING_PORT"
	// OperatorListeningPortKey is the port where the operator HTTP interface
	// will listen on.
	OperatorListeningPortKey = "OPERATOR_LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of
	// the daemon.
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the
	// values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported.
	DBTypeKey = "DB_TYPE"
	// FeeAccountKey is the ledger account collecting the fees paid on
	// settlements.
	FeeAccountKey = "FEE_ACCOUNT"
	// ReferenceAssetKey is the asset fees and trade values are denominated
	// in for tiering and rebate eligibility.
	ReferenceAssetKey = "REFERENCE_ASSET"
	// RewardAssetKey is the asset minted when rebate rewards are claimed.
	RewardAssetKey = "REWARD_ASSET"
	// StandardFeeBpsKey is the fee rate in basis points paid by anyone not
	// recognized as market maker.
	StandardFeeBpsKey = "STANDARD_FEE_BPS"
	// MakerMarketFeeBpsKey is the fee rate in basis points paid by market
	// makers on market orders.
	MakerMarketFeeBpsKey = "MAKER_MARKET_FEE_BPS"
	// MakerLimitFeeBpsKey is the fee rate in basis points paid by market
	// makers on limit orders.
	MakerLimitFeeBpsKey = "MAKER_LIMIT_FEE_BPS"
	// LeftoverRebateKey is the fraction of a paid fee rebated by the
	// leftover pool when no sunrise pool is eligible.
	LeftoverRebateKey = "LEFTOVER_REBATE"
	// EpochDurationKey is the duration of a reward accumulation epoch.
	EpochDurationKey = "EPOCH_DURATION"
	// MaxOrdersPerOwnerKey bounds the open orders a single account can have.
	MaxOrdersPerOwnerKey = "MAX_ORDERS_PER_OWNER"
	// MaxCounterFillsKey bounds the counter fills accepted by a single
	// settle request.
	MaxCounterFillsKey = "MAX_COUNTER_FILLS"
	// PriceFeederKey selects the external price source.
	PriceFeederKey = "PRICE_FEEDER"
	// FeedIntervalKey is how often the feeder flushes the latest prices.
	FeedIntervalKey = "FEED_INTERVAL"
	// WebhookTimeoutKey is the timeout of a single webhook notification.
	WebhookTimeoutKey = "WEBHOOK_TIMEOUT"
	// WebhookRequestsPerSecondKey caps the outbound webhook request rate.
	WebhookRequestsPerSecondKey = "WEBHOOK_REQUESTS_PER_SECOND"
	// SunrisePoolsKey is the path of a JSON file with the sunrise pools to
	// seed an empty store with.
	SunrisePoolsKey = "SUNRISE_POOLS"

	// DBBadger and DBInMemory are the supported database types.
	DBBadger   = "badger"
	DBInMemory = "inmemory"

	// FeederKraken, FeederCoinbase and FeederNone are the supported price
	// feeders.
	FeederKraken   = "kraken"
	FeederCoinbase = "coinbase"
	FeederNone     = "none"

	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("settled", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("SETTLED")
	vip.AutomaticEnv()

	vip.SetDefault(TraderListeningPortKey, 9945)
	vip.SetDefault(OperatorListeningPortKey, 9000)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(FeeAccountKey, "fee_account")
	vip.SetDefault(ReferenceAssetKey, "usdt")
	vip.SetDefault(RewardAssetKey, "srg")
	vip.SetDefault(StandardFeeBpsKey, 30)
	vip.SetDefault(MakerMarketFeeBpsKey, 10)
	vip.SetDefault(MakerLimitFeeBpsKey, 5)
	vip.SetDefault(LeftoverRebateKey, 0.1)
	vip.SetDefault(EpochDurationKey, 24*time.Hour)
	vip.SetDefault(MaxOrdersPerOwnerKey, 100)
	vip.SetDefault(MaxCounterFillsKey, 10)
	vip.SetDefault(PriceFeederKey, FeederKraken)
	vip.SetDefault(FeedIntervalKey, time.Second)
	vip.SetDefault(WebhookTimeoutKey, 10*time.Second)
	vip.SetDefault(WebhookRequestsPerSecondKey, 20)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint32(key string) uint32 {
	return vip.GetUint32(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetFloat(key string) float64 {
	return vip.GetFloat64(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	switch dbType := GetString(DBTypeKey); dbType {
	case DBBadger, DBInMemory:
	default:
		return fmt.Errorf("unsupported database type: %s", dbType)
	}

	switch feeder := GetString(PriceFeederKey); feeder {
	case FeederKraken, FeederCoinbase, FeederNone:
	default:
		return fmt.Errorf("unsupported price feeder: %s", feeder)
	}

	standard := GetUint64(StandardFeeBpsKey)
	makerMarket := GetUint64(MakerMarketFeeBpsKey)
	makerLimit := GetUint64(MakerLimitFeeBpsKey)
	if makerLimit > makerMarket || makerMarket > standard {
		return fmt.Errorf(
			"fee rates must be ordered %s <= %s <= %s",
			MakerLimitFeeBpsKey, MakerMarketFeeBpsKey, StandardFeeBpsKey,
		)
	}

	leftoverRebate := GetFloat(LeftoverRebateKey)
	if leftoverRebate < 0 || leftoverRebate > 1 {
		return fmt.Errorf("%s must be in the [0, 1] range", LeftoverRebateKey)
	}

	if GetDuration(EpochDurationKey) <= 0 {
		return fmt.Errorf("%s must be positive", EpochDurationKey)
	}
	if GetInt(MaxOrdersPerOwnerKey) <= 0 {
		return fmt.Errorf("%s must be positive", MaxOrdersPerOwnerKey)
	}
	if GetInt(MaxCounterFillsKey) <= 0 {
		return fmt.Errorf("%s must be positive", MaxCounterFillsKey)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	return makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
