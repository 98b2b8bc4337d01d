package inmemory

import (
	"context"
	"sort"

	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/pkg/mathutil"
)

type rewardRepositoryImpl struct {
	store *rewardInmemoryStore
}

func newRewardRepositoryImpl(
	store *rewardInmemoryStore,
) domain.RewardRepository {
	return &rewardRepositoryImpl{store}
}

func (r *rewardRepositoryImpl) CreditReward(
	_ context.Context, account string, epoch, amount uint64,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	byEpoch, ok := r.store.rewards[account]
	if !ok {
		byEpoch = make(map[uint64]uint64)
		r.store.rewards[account] = byEpoch
	}

	newAmount, err := mathutil.CheckedAdd(byEpoch[epoch], amount)
	if err != nil {
		return err
	}
	byEpoch[epoch] = newAmount
	return nil
}

func (r *rewardRepositoryImpl) GetRewards(
	_ context.Context, account string,
) ([]domain.Reward, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	byEpoch := r.store.rewards[account]
	rewards := make([]domain.Reward, 0, len(byEpoch))
	for epoch, amount := range byEpoch {
		rewards = append(rewards, domain.Reward{
			Account: account,
			Epoch:   epoch,
			Amount:  amount,
		})
	}
	sort.Slice(rewards, func(i, j int) bool {
		return rewards[i].Epoch < rewards[j].Epoch
	})
	return rewards, nil
}

func (r *rewardRepositoryImpl) ClaimReward(
	_ context.Context, account string, epoch uint64,
) (uint64, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	byEpoch, ok := r.store.rewards[account]
	if !ok {
		return 0, domain.ErrRewardNotFound
	}
	amount, ok := byEpoch[epoch]
	if !ok {
		return 0, domain.ErrRewardNotFound
	}

	delete(byEpoch, epoch)
	if len(byEpoch) == 0 {
		delete(r.store.rewards, account)
	}
	return amount, nil
}
