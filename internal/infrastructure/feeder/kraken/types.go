package krakenfeeder

import (
	"github.com/shopspring/decimal"
	"github.com/sunridge-network/settled/internal/core/ports"
)

type market struct {
	baseAsset  string
	quoteAsset string
	ticker     string
}

func (m market) BaseAsset() string {
	return m.baseAsset
}

func (m market) QuoteAsset() string {
	return m.quoteAsset
}

func (m market) Ticker() string {
	return m.ticker
}

type priceFeed struct {
	market     ports.Market
	basePrice  decimal.Decimal
	quotePrice decimal.Decimal
}

func (p *priceFeed) GetMarket() ports.Market {
	return p.market
}

func (p *priceFeed) GetBasePrice() decimal.Decimal {
	return p.basePrice
}

func (p *priceFeed) GetQuotePrice() decimal.Decimal {
	return p.quotePrice
}
