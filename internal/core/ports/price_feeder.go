package ports

import "github.com/shopspring/decimal"

// Market is an asset pair tracked by a price feeder under a
// source-specific ticker.
type Market interface {
	BaseAsset() string
	QuoteAsset() string
	Ticker() string
}

// PriceFeed is a single price update pushed by a feeder.
type PriceFeed interface {
	GetMarket() Market
	// GetBasePrice returns how much one base asset unit is valued in quote
	// asset.
	GetBasePrice() decimal.Decimal
	// GetQuotePrice returns how much one quote asset unit is valued in base
	// asset.
	GetQuotePrice() decimal.Decimal
}

// PriceFeeder streams price updates for a set of subscribed markets from
// an external source.
type PriceFeeder interface {
	WellKnownMarkets() []Market
	SubscribeMarkets([]Market) error

	Start() error
	Stop()

	FeedChan() chan PriceFeed
}
