package fee

import (
	"context"
	"fmt"

	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/internal/core/ports"
	"github.com/sunridge-network/settled/pkg/mathutil"
)

// Rates is the fee schedule expressed in basis points, keyed by the payer
// being a recognized market maker and by the order kind. Market makers
// placing limit orders get the lowest rate, market makers placing market
// orders a middle one, everybody else pays the standard rate.
type Rates struct {
	StandardBps    uint64
	MakerMarketBps uint64
	MakerLimitBps  uint64
}

func (r Rates) validate() error {
	if r.MakerLimitBps > r.MakerMarketBps || r.MakerMarketBps > r.StandardBps {
		return fmt.Errorf(
			"fee rates must be ordered maker limit <= maker market <= standard",
		)
	}
	if r.StandardBps >= mathutil.BpsDenominator {
		return fmt.Errorf("standard fee rate must be below 100%%")
	}
	return nil
}

// Service is the fee calculator. Given an asset, a gross amount and the
// payer's fee tier it returns the fee amount along with its valuation in
// the reference currency. It never mutates storage.
type Service struct {
	oracle         ports.PriceOracle
	referenceAsset string
	rates          Rates
}

func NewService(
	oracle ports.PriceOracle, referenceAsset string, rates Rates,
) (*Service, error) {
	if oracle == nil {
		return nil, fmt.Errorf("missing price oracle")
	}
	if referenceAsset == "" {
		return nil, fmt.Errorf("missing reference asset")
	}
	if err := rates.validate(); err != nil {
		return nil, err
	}

	return &Service{oracle, referenceAsset, rates}, nil
}

// RateBps returns the fee rate in basis points for the given tier.
func (s *Service) RateBps(isMarketMaker bool, kind int) uint64 {
	if isMarketMaker {
		if kind == domain.OrderKindLimit {
			return s.rates.MakerLimitBps
		}
		return s.rates.MakerMarketBps
	}
	return s.rates.StandardBps
}

// CalculateFee computes the fee due on the given gross amount. The fee is
// floored so the effective rate never exceeds the nominal one. The
// reference-currency valuations are zero when the oracle has no price for
// the asset, downstream consumers must tolerate a zero valuation instead
// of failing the trade.
func (s *Service) CalculateFee(
	ctx context.Context,
	asset string, grossAmount uint64, kind int, isMarketMaker bool,
) (*domain.Fee, error) {
	rate := s.RateBps(isMarketMaker, kind)
	_, feeAmount, err := mathutil.PlusFee(grossAmount, rate)
	if err != nil {
		return nil, domain.ErrOverflow
	}

	refRate, err := s.oracle.Rate(ctx, asset, s.referenceAsset)
	if err != nil {
		return nil, err
	}

	return &domain.Fee{
		Asset:       asset,
		Amount:      grossAmount,
		Fee:         feeAmount,
		FeeValue:    mathutil.Decimal(feeAmount).Mul(refRate),
		AmountValue: mathutil.Decimal(grossAmount).Mul(refRate),
	}, nil
}
