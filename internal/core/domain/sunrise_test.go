package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/sunridge-network/settled/internal/core/domain"
)

func TestSunrisePoolReward(t *testing.T) {
	t.Parallel()

	pool := domain.SunrisePool{
		Id:                    1,
		Balance:               1000,
		TransactionsRemaining: 10,
		MinimumTradeValue:     0,
		Rebate:                "1.25",
	}

	reward := pool.Reward(decimal.NewFromInt(100))
	require.Equal(t, uint64(125), reward)

	// Fractional rewards are floored.
	reward = pool.Reward(decimal.NewFromFloat(10.5))
	require.Equal(t, uint64(13), reward)
}

func TestSunrisePoolDebit(t *testing.T) {
	t.Parallel()

	t.Run("plain_debit", func(t *testing.T) {
		t.Parallel()

		pool := domain.SunrisePool{
			Id: 1, Balance: 1000, TransactionsRemaining: 2, Rebate: "1",
		}
		spill := pool.Debit(400)
		require.Zero(t, spill)
		require.Equal(t, uint64(600), pool.Balance)
		require.Equal(t, uint32(1), pool.TransactionsRemaining)
		require.False(t, pool.IsExhausted())
	})

	t.Run("last_transaction_spills_residual", func(t *testing.T) {
		t.Parallel()

		pool := domain.SunrisePool{
			Id: 1, Balance: 1000, TransactionsRemaining: 1, Rebate: "1",
		}
		spill := pool.Debit(400)
		require.Equal(t, uint64(600), spill)
		require.Zero(t, pool.Balance)
		require.Zero(t, pool.TransactionsRemaining)
		require.True(t, pool.IsExhausted())
	})

	t.Run("debit_saturates_at_zero", func(t *testing.T) {
		t.Parallel()

		pool := domain.SunrisePool{
			Id: 1, Balance: 300, TransactionsRemaining: 5, Rebate: "1",
		}
		spill := pool.Debit(400)
		require.Zero(t, spill)
		require.Zero(t, pool.Balance)
		require.Equal(t, uint32(4), pool.TransactionsRemaining)
	})
}
