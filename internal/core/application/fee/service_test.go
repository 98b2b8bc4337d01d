package fee_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/sunridge-network/settled/internal/core/application/fee"
	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/internal/core/ports"
	"github.com/sunridge-network/settled/internal/infrastructure/oracle"
	"github.com/sunridge-network/settled/internal/infrastructure/storage/db/inmemory"
)

var ctx = context.Background()

func TestNewService(t *testing.T) {
	priceOracle := newTestOracle(t)

	tests := []struct {
		name    string
		rates   fee.Rates
		wantErr bool
	}{
		{
			name:  "valid rates",
			rates: fee.Rates{StandardBps: 100, MakerMarketBps: 50, MakerLimitBps: 25},
		},
		{
			name:  "equal rates",
			rates: fee.Rates{StandardBps: 100, MakerMarketBps: 100, MakerLimitBps: 100},
		},
		{
			name:    "maker above standard",
			rates:   fee.Rates{StandardBps: 50, MakerMarketBps: 100, MakerLimitBps: 25},
			wantErr: true,
		},
		{
			name:    "maker limit above maker market",
			rates:   fee.Rates{StandardBps: 100, MakerMarketBps: 25, MakerLimitBps: 50},
			wantErr: true,
		},
		{
			name:    "standard at one hundred percent",
			rates:   fee.Rates{StandardBps: 10000, MakerMarketBps: 50, MakerLimitBps: 25},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, err := fee.NewService(priceOracle, "ref", tt.rates)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
		})
	}
}

func TestRateBps(t *testing.T) {
	svc, err := fee.NewService(newTestOracle(t), "ref", fee.Rates{
		StandardBps: 100, MakerMarketBps: 50, MakerLimitBps: 25,
	})
	require.NoError(t, err)

	require.Equal(t, uint64(100), svc.RateBps(false, domain.OrderKindLimit))
	require.Equal(t, uint64(100), svc.RateBps(false, domain.OrderKindMarket))
	require.Equal(t, uint64(50), svc.RateBps(true, domain.OrderKindMarket))
	require.Equal(t, uint64(25), svc.RateBps(true, domain.OrderKindLimit))
}

func TestCalculateFee(t *testing.T) {
	repoManager := inmemory.NewRepoManager(10)
	require.NoError(t, repoManager.PriceRepository().UpdatePrice(
		ctx, "btc", "ref", decimal.NewFromInt(20000),
	))
	priceOracle, err := oracle.NewPriceTable(repoManager)
	require.NoError(t, err)

	svc, err := fee.NewService(priceOracle, "ref", fee.Rates{
		StandardBps: 100, MakerMarketBps: 50, MakerLimitBps: 25,
	})
	require.NoError(t, err)

	t.Run("standard rate with valuation", func(t *testing.T) {
		calculated, err := svc.CalculateFee(
			ctx, "btc", 10000, domain.OrderKindLimit, false,
		)
		require.NoError(t, err)
		require.Equal(t, uint64(100), calculated.Fee)
		require.True(t,
			calculated.FeeValue.Equal(decimal.NewFromInt(100*20000)),
		)
		require.True(t,
			calculated.AmountValue.Equal(decimal.NewFromInt(10000*20000)),
		)
	})

	t.Run("maker limit rate", func(t *testing.T) {
		calculated, err := svc.CalculateFee(
			ctx, "btc", 10000, domain.OrderKindLimit, true,
		)
		require.NoError(t, err)
		require.Equal(t, uint64(25), calculated.Fee)
	})

	t.Run("fee is floored", func(t *testing.T) {
		// 1% of 999 is 9.99, the effective rate never exceeds the nominal.
		calculated, err := svc.CalculateFee(
			ctx, "btc", 999, domain.OrderKindLimit, false,
		)
		require.NoError(t, err)
		require.Equal(t, uint64(9), calculated.Fee)
	})

	t.Run("unknown asset has zero valuation", func(t *testing.T) {
		calculated, err := svc.CalculateFee(
			ctx, "unknown", 10000, domain.OrderKindLimit, false,
		)
		require.NoError(t, err)
		require.Equal(t, uint64(100), calculated.Fee)
		require.True(t, calculated.FeeValue.IsZero())
		require.True(t, calculated.AmountValue.IsZero())
	})
}

func newTestOracle(t *testing.T) ports.PriceOracle {
	t.Helper()

	priceOracle, err := oracle.NewPriceTable(inmemory.NewRepoManager(10))
	require.NoError(t, err)
	return priceOracle
}
