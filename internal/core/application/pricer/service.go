package pricer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sunridge-network/settled/internal/core/ports"
)

// Service keeps the oracle price table fresh by consuming the updates
// streamed by a price feeder. Assets without an external feed can be
// priced through a manual override. A nil feeder disables the streaming
// part and leaves only the manual override.
type Service struct {
	repoManager ports.RepoManager
	feeder      ports.PriceFeeder

	quitChan chan struct{}
}

func NewService(
	repoManager ports.RepoManager, feeder ports.PriceFeeder,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}

	return &Service{
		repoManager: repoManager,
		feeder:      feeder,
		quitChan:    make(chan struct{}, 1),
	}, nil
}

// Start subscribes the feeder to its well-known markets and consumes its
// feed channel until Stop is called. It is meant to be run in a dedicated
// goroutine.
func (s *Service) Start() error {
	if s.feeder == nil {
		return nil
	}

	markets := s.feeder.WellKnownMarkets()
	if err := s.feeder.SubscribeMarkets(markets); err != nil {
		return err
	}

	go func() {
		if err := s.feeder.Start(); err != nil {
			log.WithError(err).Error("price feeder stopped with error")
		}
	}()

	for {
		select {
		case <-s.quitChan:
			return nil
		case feed, ok := <-s.feeder.FeedChan():
			if !ok {
				return nil
			}
			s.updatePrice(feed)
		}
	}
}

// Stop stops consuming the feed and shuts the feeder down.
func (s *Service) Stop() {
	if s.feeder == nil {
		return
	}
	s.feeder.Stop()
	s.quitChan <- struct{}{}
}

// UpdatePrice manually overrides the rate of a pair in both directions.
func (s *Service) UpdatePrice(
	ctx context.Context, baseAsset, quoteAsset string, price decimal.Decimal,
) error {
	if baseAsset == quoteAsset {
		return fmt.Errorf("assets must differ")
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("price must be positive")
	}

	priceRepo := s.repoManager.PriceRepository()
	if err := priceRepo.UpdatePrice(ctx, baseAsset, quoteAsset, price); err != nil {
		return err
	}
	return priceRepo.UpdatePrice(
		ctx, quoteAsset, baseAsset, decimal.NewFromInt(1).Div(price),
	)
}

func (s *Service) updatePrice(feed ports.PriceFeed) {
	ctx := context.Background()
	mkt := feed.GetMarket()
	priceRepo := s.repoManager.PriceRepository()

	if basePrice := feed.GetBasePrice(); basePrice.IsPositive() {
		if err := priceRepo.UpdatePrice(
			ctx, mkt.BaseAsset(), mkt.QuoteAsset(), basePrice,
		); err != nil {
			log.WithError(err).Warnf(
				"failed to update price for pair %s", mkt.Ticker(),
			)
			return
		}
	}
	if quotePrice := feed.GetQuotePrice(); quotePrice.IsPositive() {
		if err := priceRepo.UpdatePrice(
			ctx, mkt.QuoteAsset(), mkt.BaseAsset(), quotePrice,
		); err != nil {
			log.WithError(err).Warnf(
				"failed to update price for pair %s", mkt.Ticker(),
			)
		}
	}
}
