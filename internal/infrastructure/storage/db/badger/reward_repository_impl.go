package dbbadger

import (
	"context"
	"fmt"
	"sort"

	"github.com/sunridge-network/settled/internal/core/domain"
	"github.com/sunridge-network/settled/pkg/mathutil"
	"github.com/timshannon/badgerhold/v4"
)

type rewardRepositoryImpl struct {
	store *badgerhold.Store
}

func newRewardRepositoryImpl(
	store *badgerhold.Store,
) domain.RewardRepository {
	return &rewardRepositoryImpl{store}
}

func (r *rewardRepositoryImpl) CreditReward(
	_ context.Context, account string, epoch, amount uint64,
) error {
	key := rewardKey(account, epoch)

	var reward domain.Reward
	if err := r.store.Get(key, &reward); err != nil {
		if err != badgerhold.ErrNotFound {
			return err
		}
		reward = domain.Reward{Account: account, Epoch: epoch}
	}

	newAmount, err := mathutil.CheckedAdd(reward.Amount, amount)
	if err != nil {
		return err
	}
	reward.Amount = newAmount

	return r.store.Upsert(key, reward)
}

func (r *rewardRepositoryImpl) GetRewards(
	_ context.Context, account string,
) ([]domain.Reward, error) {
	var rewards []domain.Reward
	if err := r.store.Find(
		&rewards, badgerhold.Where("Account").Eq(account),
	); err != nil {
		return nil, err
	}
	sort.Slice(rewards, func(i, j int) bool {
		return rewards[i].Epoch < rewards[j].Epoch
	})
	return rewards, nil
}

func (r *rewardRepositoryImpl) ClaimReward(
	_ context.Context, account string, epoch uint64,
) (uint64, error) {
	key := rewardKey(account, epoch)

	var reward domain.Reward
	if err := r.store.Get(key, &reward); err != nil {
		if err == badgerhold.ErrNotFound {
			return 0, domain.ErrRewardNotFound
		}
		return 0, err
	}

	if err := r.store.Delete(key, &domain.Reward{}); err != nil {
		return 0, err
	}
	return reward.Amount, nil
}

func rewardKey(account string, epoch uint64) string {
	return fmt.Sprintf("%s:%d", account, epoch)
}
