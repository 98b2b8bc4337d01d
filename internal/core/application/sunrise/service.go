package sunrise

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/internal/core/ports"
	"github.com/sunridge-network/settled/pkg/mathutil"
)

// Service is the rebate pool manager. For every fee paid on a settled
// fill it picks at most one eligible sunrise pool, debits it and credits
// the payer's per-epoch reward accumulator. Exhausted pools spill their
// residual balance into a scalar leftover pool which serves as fallback
// at a fixed fraction.
type Service struct {
	repoManager ports.RepoManager
	oracle      ports.PriceOracle
	ledger      ports.Ledger

	rewardAsset    string
	leftoverRebate decimal.Decimal
	epochDuration  time.Duration
}

func NewService(
	repoManager ports.RepoManager,
	oracle ports.PriceOracle,
	ledger ports.Ledger,
	rewardAsset string,
	leftoverRebate decimal.Decimal,
	epochDuration time.Duration,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if oracle == nil {
		return nil, fmt.Errorf("missing price oracle")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger")
	}
	if rewardAsset == "" {
		return nil, fmt.Errorf("missing reward asset")
	}
	if leftoverRebate.IsNegative() {
		return nil, fmt.Errorf("leftover rebate must not be negative")
	}
	if epochDuration <= 0 {
		return nil, fmt.Errorf("epoch duration must be positive")
	}

	return &Service{
		repoManager, oracle, ledger, rewardAsset, leftoverRebate, epochDuration,
	}, nil
}

// CurrentEpoch returns the epoch the given time falls in. The division
// runs on nanoseconds so sub-second durations do not truncate to zero.
func (s *Service) CurrentEpoch(at time.Time) uint64 {
	return uint64(at.UnixNano()) / uint64(s.epochDuration.Nanoseconds())
}

// SelectPool returns the pool that should rebate the given fee, or nil if
// none is eligible. A pool is eligible if it has transactions left, a
// balance covering the reward and a minimum trade value not above the
// trade's reference-currency value. Ties on the minimum trade value are
// broken deterministically by the lowest pool id; otherwise the pool with
// the highest minimum trade value wins, rewarding larger trades
// preferentially.
func (s *Service) SelectPool(
	ctx context.Context, fee *domain.Fee,
) (*domain.SunrisePool, error) {
	feeInReward, err := s.feeInRewardAsset(ctx, fee)
	if err != nil {
		return nil, err
	}

	pools, err := s.repoManager.SunriseRepository().GetPools(ctx)
	if err != nil {
		return nil, err
	}

	tradeValue := fee.AmountValue
	var selected *domain.SunrisePool
	for i := range pools {
		pool := pools[i]
		if pool.TransactionsRemaining == 0 {
			continue
		}
		if mathutil.Decimal(pool.MinimumTradeValue).GreaterThan(tradeValue) {
			continue
		}
		if pool.Balance < pool.Reward(feeInReward) {
			continue
		}
		if selected == nil ||
			pool.MinimumTradeValue > selected.MinimumTradeValue {
			selected = &pools[i]
		}
	}
	return selected, nil
}

// Apply debits the selected pool, or the leftover pool if none was
// selected, and credits the account's reward accumulator for the given
// epoch. The selected pool is a snapshot and may have been drained by a
// concurrent settlement since; its eligibility is rechecked inside the
// store update and the leftover pool serves as fallback when the recheck
// fails. It returns the reward amount, zero being a valid outcome: no
// eligible pool and an insufficient leftover mean no reward, not an error.
func (s *Service) Apply(
	ctx context.Context,
	pool *domain.SunrisePool, fee *domain.Fee, account string, epoch uint64,
) (uint64, error) {
	feeInReward, err := s.feeInRewardAsset(ctx, fee)
	if err != nil {
		return 0, err
	}

	var reward uint64
	if pool != nil {
		debited, applied, err := s.debitPool(ctx, pool.Id, feeInReward)
		if err != nil {
			return 0, err
		}
		if applied {
			reward = debited
		} else {
			pool = nil
		}
	}
	if pool == nil {
		reward, err = s.debitLeftover(ctx, feeInReward)
		if err != nil {
			return 0, err
		}
	}

	if reward == 0 {
		return 0, nil
	}

	if err := s.repoManager.RewardRepository().CreditReward(
		ctx, account, epoch, reward,
	); err != nil {
		return 0, err
	}

	log.Debugf(
		"sunrise: rewarded account %s with %d for epoch %d", account, reward, epoch,
	)
	return reward, nil
}

// ClaimRewards clears the account's accumulator for the given epoch and
// mints the claimed amount of the reward asset to the account.
func (s *Service) ClaimRewards(
	ctx context.Context, account string, epoch uint64,
) (uint64, error) {
	amount, err := s.repoManager.RewardRepository().ClaimReward(
		ctx, account, epoch,
	)
	if err != nil {
		return 0, err
	}

	if err := s.ledger.Mint(ctx, s.rewardAsset, account, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// debitPool recomputes the reward from the stored pool and debits it only
// if the pool can still cover it. It returns the amount actually debited
// and whether the pool served the rebate at all.
func (s *Service) debitPool(
	ctx context.Context, poolID uint32, feeInReward decimal.Decimal,
) (uint64, bool, error) {
	var debited, spill uint64
	var applied bool
	if err := s.repoManager.SunriseRepository().UpdatePool(
		ctx, poolID, func(p *domain.SunrisePool) (*domain.SunrisePool, error) {
			reward := p.Reward(feeInReward)
			if p.TransactionsRemaining == 0 || p.Balance < reward {
				return p, nil
			}
			applied = true
			debited = reward
			spill = p.Debit(reward)
			return p, nil
		},
	); err != nil {
		return 0, false, err
	}

	if spill == 0 {
		return debited, applied, nil
	}
	if err := s.repoManager.SunriseRepository().UpdateLeftover(
		ctx, func(balance uint64) (uint64, error) {
			return mathutil.CheckedAdd(balance, spill)
		},
	); err != nil {
		return 0, false, err
	}
	return debited, applied, nil
}

func (s *Service) debitLeftover(
	ctx context.Context, feeInReward decimal.Decimal,
) (uint64, error) {
	reward, err := mathutil.Uint64(
		s.leftoverRebate.Mul(feeInReward).Floor(),
	)
	if err != nil {
		return 0, err
	}
	if reward == 0 {
		return 0, nil
	}

	paid := uint64(0)
	if err := s.repoManager.SunriseRepository().UpdateLeftover(
		ctx, func(balance uint64) (uint64, error) {
			if balance < reward {
				return balance, nil
			}
			paid = reward
			return balance - reward, nil
		},
	); err != nil {
		return 0, err
	}
	return paid, nil
}

func (s *Service) feeInRewardAsset(
	ctx context.Context, fee *domain.Fee,
) (decimal.Decimal, error) {
	rate, err := s.oracle.Rate(ctx, fee.Asset, s.rewardAsset)
	if err != nil {
		return decimal.Zero, err
	}
	return mathutil.Decimal(fee.Fee).Mul(rate), nil
}
