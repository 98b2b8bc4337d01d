package dbbadger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/internal/core/ports"
	dbbadger "github.com/sunridge-network/settled/internal/infrastructure/storage/db/badger"
)

var ctx = context.Background()

func TestOrderRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	orderRepo := repoManager.OrderRepository()

	order, err := domain.NewOrder(
		"alice", "btc", "usdt", 10, 200, domain.OrderKindLimit, 0, false,
	)
	require.NoError(t, err)
	require.NoError(t, orderRepo.AddOrder(ctx, order))

	found, err := orderRepo.GetOrder(ctx, order.Id)
	require.NoError(t, err)
	require.Equal(t, order.Owner, found.Owner)
	require.Equal(t, order.AmountFrom, found.AmountFrom)

	err = orderRepo.UpdateOrder(
		ctx, order.Id, func(o *domain.Order) (*domain.Order, error) {
			if err := o.Fill(5, 100); err != nil {
				return nil, err
			}
			return o, nil
		},
	)
	require.NoError(t, err)

	found, err = orderRepo.GetOrder(ctx, order.Id)
	require.NoError(t, err)
	require.True(t, found.IsPartiallyFilled())

	orders, err := orderRepo.GetOrdersForOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	require.NoError(t, orderRepo.DeleteOrder(ctx, order.Id))
	err = orderRepo.DeleteOrder(ctx, order.Id)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestSunriseAndRewardRepositories(t *testing.T) {
	repoManager := newTestRepoManager(t)
	sunriseRepo := repoManager.SunriseRepository()
	rewardRepo := repoManager.RewardRepository()

	require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
		Id: 1, Balance: 1000, TransactionsRemaining: 1, Rebate: "0.5",
	}))

	err := sunriseRepo.UpdatePool(
		ctx, 1, func(p *domain.SunrisePool) (*domain.SunrisePool, error) {
			spill := p.Debit(400)
			require.Equal(t, uint64(600), spill)
			return p, nil
		},
	)
	require.NoError(t, err)

	pools, err := sunriseRepo.GetPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	require.Zero(t, pools[0].Balance)

	require.NoError(t, sunriseRepo.UpdateLeftover(
		ctx, func(balance uint64) (uint64, error) {
			return balance + 600, nil
		},
	))
	leftover, err := sunriseRepo.GetLeftover(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(600), leftover)

	require.NoError(t, rewardRepo.CreditReward(ctx, "alice", 7, 100))
	require.NoError(t, rewardRepo.CreditReward(ctx, "alice", 7, 11))

	rewards, err := rewardRepo.GetRewards(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	require.Equal(t, uint64(111), rewards[0].Amount)

	claimed, err := rewardRepo.ClaimReward(ctx, "alice", 7)
	require.NoError(t, err)
	require.Equal(t, uint64(111), claimed)

	_, err = rewardRepo.ClaimReward(ctx, "alice", 7)
	require.ErrorIs(t, err, domain.ErrRewardNotFound)
}

func TestPriceRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	priceRepo := repoManager.PriceRepository()

	price, err := priceRepo.GetPrice(ctx, "btc", "usdt")
	require.NoError(t, err)
	require.True(t, price.IsZero())

	require.NoError(t, priceRepo.UpdatePrice(
		ctx, "btc", "usdt", decimalFromString(t, "20000.5"),
	))

	price, err = priceRepo.GetPrice(ctx, "btc", "usdt")
	require.NoError(t, err)
	require.Equal(t, "20000.5", price.String())
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestRepoManager(t *testing.T) ports.RepoManager {
	t.Helper()

	repoManager, err := dbbadger.NewRepoManager(t.TempDir(), nil, 100)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)
	return repoManager
}
