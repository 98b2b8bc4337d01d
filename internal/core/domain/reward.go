package domain

// Reward is the per-account-per-epoch accumulator of sunrise rebates.
// Created lazily on first reward, cleared on claim.
type Reward struct {
	Account string
	Epoch   uint64
	Amount  uint64
}
