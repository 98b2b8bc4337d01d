package sunrise_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/sunridge-network/settled/internal/core/application/sunrise"
	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/internal/core/ports"
	inmemoryledger "github.com/sunridge-network/settled/internal/infrastructure/ledger/inmemory"
	"github.com/sunridge-network/settled/internal/infrastructure/oracle"
	"github.com/sunridge-network/settled/internal/infrastructure/storage/db/inmemory"
)

var ctx = context.Background()

const rewardAsset = "srg"

func newTestService(
	t *testing.T, leftoverRebate string,
) (*sunrise.Service, ports.RepoManager, *inmemoryledger.Ledger) {
	t.Helper()

	repoManager := inmemory.NewRepoManager(100)
	ledger := inmemoryledger.NewLedger()
	priceOracle, err := oracle.NewPriceTable(repoManager)
	require.NoError(t, err)

	rebate, err := decimal.NewFromString(leftoverRebate)
	require.NoError(t, err)

	svc, err := sunrise.NewService(
		repoManager, priceOracle, ledger, rewardAsset, rebate, time.Hour,
	)
	require.NoError(t, err)
	return svc, repoManager, ledger
}

// rewardFee builds a fee already denominated in the reward asset so the
// oracle applies a unity rate.
func rewardFee(feeAmount uint64, tradeValue int64) *domain.Fee {
	return &domain.Fee{
		Asset:       rewardAsset,
		Amount:      uint64(tradeValue),
		Fee:         feeAmount,
		FeeValue:    decimal.NewFromInt(int64(feeAmount)),
		AmountValue: decimal.NewFromInt(tradeValue),
	}
}

func TestCurrentEpoch(t *testing.T) {
	t.Run("hourly epochs", func(t *testing.T) {
		svc, _, _ := newTestService(t, "0.1")

		at := time.Unix(7200, 0)
		require.Equal(t, uint64(2), svc.CurrentEpoch(at))
		require.Equal(t, uint64(2), svc.CurrentEpoch(at.Add(59*time.Minute)))
		require.Equal(t, uint64(3), svc.CurrentEpoch(at.Add(time.Hour)))
	})

	t.Run("sub-second epochs", func(t *testing.T) {
		repoManager := inmemory.NewRepoManager(100)
		priceOracle, err := oracle.NewPriceTable(repoManager)
		require.NoError(t, err)

		svc, err := sunrise.NewService(
			repoManager, priceOracle, inmemoryledger.NewLedger(), rewardAsset,
			decimal.NewFromFloat(0.1), 500*time.Millisecond,
		)
		require.NoError(t, err)
		require.Equal(t, uint64(2), svc.CurrentEpoch(time.Unix(1, 0)))
		require.Equal(t, uint64(3), svc.CurrentEpoch(time.Unix(1, int64(500*time.Millisecond))))
	})
}

func TestSelectPool(t *testing.T) {
	t.Run("no pools", func(t *testing.T) {
		svc, _, _ := newTestService(t, "0.1")

		pool, err := svc.SelectPool(ctx, rewardFee(1000, 100000))
		require.NoError(t, err)
		require.Nil(t, pool)
	})

	t.Run("filters ineligible pools", func(t *testing.T) {
		svc, repoManager, _ := newTestService(t, "0.1")
		sunriseRepo := repoManager.SunriseRepository()

		require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
			Id: 1, Balance: 10000, TransactionsRemaining: 0, Rebate: "0.5",
		}))
		require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
			Id: 2, Balance: 100, TransactionsRemaining: 5, Rebate: "0.5",
		}))
		require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
			Id: 3, Balance: 10000, TransactionsRemaining: 5,
			MinimumTradeValue: 1000000, Rebate: "0.5",
		}))

		// Pool 1 has no transactions left, pool 2 cannot cover the 500
		// reward, pool 3 requires a larger trade.
		pool, err := svc.SelectPool(ctx, rewardFee(1000, 100000))
		require.NoError(t, err)
		require.Nil(t, pool)
	})

	t.Run("prefers highest minimum trade value", func(t *testing.T) {
		svc, repoManager, _ := newTestService(t, "0.1")
		sunriseRepo := repoManager.SunriseRepository()

		require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
			Id: 1, Balance: 10000, TransactionsRemaining: 5,
			MinimumTradeValue: 0, Rebate: "0.5",
		}))
		require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
			Id: 2, Balance: 10000, TransactionsRemaining: 5,
			MinimumTradeValue: 50000, Rebate: "0.5",
		}))

		pool, err := svc.SelectPool(ctx, rewardFee(1000, 100000))
		require.NoError(t, err)
		require.NotNil(t, pool)
		require.Equal(t, uint32(2), pool.Id)
	})

	t.Run("ties break on lowest id", func(t *testing.T) {
		svc, repoManager, _ := newTestService(t, "0.1")
		sunriseRepo := repoManager.SunriseRepository()

		require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
			Id: 2, Balance: 10000, TransactionsRemaining: 5,
			MinimumTradeValue: 50000, Rebate: "0.5",
		}))
		require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
			Id: 1, Balance: 10000, TransactionsRemaining: 5,
			MinimumTradeValue: 50000, Rebate: "0.5",
		}))

		pool, err := svc.SelectPool(ctx, rewardFee(1000, 100000))
		require.NoError(t, err)
		require.NotNil(t, pool)
		require.Equal(t, uint32(1), pool.Id)
	})
}

func TestApply(t *testing.T) {
	t.Run("debits pool and credits reward", func(t *testing.T) {
		svc, repoManager, _ := newTestService(t, "0.1")
		sunriseRepo := repoManager.SunriseRepository()

		require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
			Id: 1, Balance: 10000, TransactionsRemaining: 5, Rebate: "0.5",
		}))
		paidFee := rewardFee(1000, 100000)
		pool, err := svc.SelectPool(ctx, paidFee)
		require.NoError(t, err)
		require.NotNil(t, pool)

		reward, err := svc.Apply(ctx, pool, paidFee, "alice", 7)
		require.NoError(t, err)
		require.Equal(t, uint64(500), reward)

		pools, err := sunriseRepo.GetPools(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(9500), pools[0].Balance)
		require.Equal(t, uint32(4), pools[0].TransactionsRemaining)

		rewards, err := repoManager.RewardRepository().GetRewards(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, rewards, 1)
		require.Equal(t, uint64(7), rewards[0].Epoch)
		require.Equal(t, uint64(500), rewards[0].Amount)
	})

	t.Run("last transaction spills residual to leftover", func(t *testing.T) {
		svc, repoManager, _ := newTestService(t, "0.1")
		sunriseRepo := repoManager.SunriseRepository()

		require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
			Id: 1, Balance: 2000, TransactionsRemaining: 1, Rebate: "0.5",
		}))
		paidFee := rewardFee(1000, 100000)
		pool, err := svc.SelectPool(ctx, paidFee)
		require.NoError(t, err)
		require.NotNil(t, pool)

		reward, err := svc.Apply(ctx, pool, paidFee, "alice", 7)
		require.NoError(t, err)
		require.Equal(t, uint64(500), reward)

		pools, err := sunriseRepo.GetPools(ctx)
		require.NoError(t, err)
		require.Zero(t, pools[0].Balance)
		require.Zero(t, pools[0].TransactionsRemaining)

		leftover, err := sunriseRepo.GetLeftover(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1500), leftover)
	})

	t.Run("drained pool falls back to leftover", func(t *testing.T) {
		svc, repoManager, _ := newTestService(t, "0.1")
		sunriseRepo := repoManager.SunriseRepository()

		require.NoError(t, sunriseRepo.AddPool(ctx, &domain.SunrisePool{
			Id: 1, Balance: 10000, TransactionsRemaining: 5, Rebate: "0.5",
		}))
		paidFee := rewardFee(1000, 100000)
		pool, err := svc.SelectPool(ctx, paidFee)
		require.NoError(t, err)
		require.NotNil(t, pool)

		// Drain the pool behind the snapshot's back, as a settlement
		// running on another order would.
		require.NoError(t, sunriseRepo.UpdatePool(
			ctx, 1, func(p *domain.SunrisePool) (*domain.SunrisePool, error) {
				p.Balance = 100
				return p, nil
			},
		))
		require.NoError(t, sunriseRepo.UpdateLeftover(
			ctx, func(uint64) (uint64, error) { return 1000, nil },
		))

		// The stale pool cannot cover the 500 reward anymore: it must stay
		// untouched and the leftover pool pays at its own fraction instead.
		reward, err := svc.Apply(ctx, pool, paidFee, "alice", 7)
		require.NoError(t, err)
		require.Equal(t, uint64(100), reward)

		pools, err := sunriseRepo.GetPools(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(100), pools[0].Balance)
		require.Equal(t, uint32(5), pools[0].TransactionsRemaining)

		leftover, err := sunriseRepo.GetLeftover(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(900), leftover)

		rewards, err := repoManager.RewardRepository().GetRewards(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, rewards, 1)
		require.Equal(t, uint64(100), rewards[0].Amount)
	})

	t.Run("falls back to leftover pool", func(t *testing.T) {
		svc, repoManager, _ := newTestService(t, "0.1")
		sunriseRepo := repoManager.SunriseRepository()

		require.NoError(t, sunriseRepo.UpdateLeftover(
			ctx, func(uint64) (uint64, error) { return 1000, nil },
		))

		reward, err := svc.Apply(ctx, nil, rewardFee(1000, 100000), "alice", 7)
		require.NoError(t, err)
		require.Equal(t, uint64(100), reward)

		leftover, err := sunriseRepo.GetLeftover(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(900), leftover)
	})

	t.Run("empty leftover pays nothing", func(t *testing.T) {
		svc, repoManager, _ := newTestService(t, "0.1")

		reward, err := svc.Apply(ctx, nil, rewardFee(1000, 100000), "alice", 7)
		require.NoError(t, err)
		require.Zero(t, reward)

		rewards, err := repoManager.RewardRepository().GetRewards(ctx, "alice")
		require.NoError(t, err)
		require.Empty(t, rewards)
	})
}

func TestClaimRewards(t *testing.T) {
	svc, repoManager, ledger := newTestService(t, "0.1")

	require.NoError(t, repoManager.RewardRepository().CreditReward(
		ctx, "alice", 7, 500,
	))

	claimed, err := svc.ClaimRewards(ctx, "alice", 7)
	require.NoError(t, err)
	require.Equal(t, uint64(500), claimed)

	balance, err := ledger.Balance(ctx, rewardAsset, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(500), balance)

	_, err = svc.ClaimRewards(ctx, "alice", 7)
	require.ErrorIs(t, err, domain.ErrRewardNotFound)
}
