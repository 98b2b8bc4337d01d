package domain

import (
	"github.com/shopspring/decimal"
	"github.com/sunridge-network/settled/pkg/mathutil"
)

// SunrisePool is a reward tier of the sunrise rebate program. A bounded
// collection of pools lives in storage, each pool rebates a fraction of
// the trading fee to the paying party until either its balance or its
// transaction counter is exhausted.
type SunrisePool struct {
	Id uint32
	// Balance is the remaining reward-asset balance of the pool.
	Balance uint64
	// TransactionsRemaining counts how many more trades the pool can rebate.
	TransactionsRemaining uint32
	// MinimumTradeValue is the reference-currency floor a trade must reach
	// to qualify for this pool.
	MinimumTradeValue uint64
	// Rebate is the fraction of the fee rebated, serialized as a decimal
	// string. It may exceed 1.
	Rebate string
}

// GetRebate returns the pool's rebate fraction as a decimal.
func (p *SunrisePool) GetRebate() decimal.Decimal {
	r, _ := decimal.NewFromString(p.Rebate)
	return r
}

// IsExhausted returns whether the pool can no longer rebate trades.
func (p *SunrisePool) IsExhausted() bool {
	return p.TransactionsRemaining == 0 || p.Balance == 0
}

// Reward returns the reward-asset amount the pool would pay for a fee of
// the given reward-asset value, floored.
func (p *SunrisePool) Reward(feeInRewardAsset decimal.Decimal) uint64 {
	reward, err := mathutil.Uint64(p.GetRebate().Mul(feeInRewardAsset).Floor())
	if err != nil {
		return 0
	}
	return reward
}

// Debit subtracts the given reward from the pool balance, saturating at
// zero, and decrements the transaction counter. If the counter reaches
// zero with a residual balance, the residual is returned as spill to be
// moved to the leftover pool and the pool balance is zeroed, so that
// unused capacity is never stranded.
func (p *SunrisePool) Debit(reward uint64) (spill uint64) {
	p.Balance = mathutil.SaturatingSub(p.Balance, reward)
	if p.TransactionsRemaining > 0 {
		p.TransactionsRemaining--
	}
	if p.TransactionsRemaining == 0 && p.Balance > 0 {
		spill = p.Balance
		p.Balance = 0
	}
	return
}
