package domain

import "context"

// SunriseRepository defines the storage of the bounded sunrise pool
// collection and of the scalar leftover pool that collects the residual
// balance of exhausted pools.
type SunriseRepository interface {
	// AddPool persists a new pool. It returns ErrSunriseCapacityExceeded
	// when the collection already holds MaxSunrisePools entries.
	AddPool(ctx context.Context, pool *SunrisePool) error
	// GetPools returns all pools sorted by ascending id.
	GetPools(ctx context.Context) ([]SunrisePool, error)
	// UpdatePool applies updateFn to the stored pool all-or-nothing.
	// It returns ErrSunrisePoolNotFound if the id is unknown.
	UpdatePool(
		ctx context.Context, id uint32,
		updateFn func(p *SunrisePool) (*SunrisePool, error),
	) error
	// GetLeftover returns the balance of the leftover pool.
	GetLeftover(ctx context.Context) (uint64, error)
	// UpdateLeftover applies updateFn to the leftover balance.
	UpdateLeftover(
		ctx context.Context, updateFn func(balance uint64) (uint64, error),
	) error
}

// RewardRepository defines the storage of the per-account-per-epoch sunrise
// reward accumulators.
type RewardRepository interface {
	// CreditReward adds the given amount to the (account, epoch)
	// accumulator, creating it lazily.
	CreditReward(
		ctx context.Context, account string, epoch, amount uint64,
	) error
	// GetRewards returns all accumulators of the given account.
	GetRewards(ctx context.Context, account string) ([]Reward, error)
	// ClaimReward clears the (account, epoch) accumulator and returns the
	// claimed amount, or ErrRewardNotFound if there is nothing to claim.
	ClaimReward(
		ctx context.Context, account string, epoch uint64,
	) (uint64, error)
}
