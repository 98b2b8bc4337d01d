package ports

import (
	"context"
	"errors"
)

var (
	// ErrLedgerInsufficientFunds is returned by withdraw checks and
	// non-best-effort fund movements lacking balance.
	ErrLedgerInsufficientFunds = errors.New("ledger: insufficient funds")
	// ErrLedgerAccountFrozen is returned when the (asset, account) pair is
	// frozen for the requested operation.
	ErrLedgerAccountFrozen = errors.New("ledger: account is frozen")
	// ErrLedgerDepositCap is returned when a deposit would exceed the
	// asset's supply cap for the account.
	ErrLedgerDepositCap = errors.New("ledger: deposit would exceed cap")
)

// Ledger is the external system of record for balances per
// (asset, account). The settlement engine consumes it and never
// reimplements balance bookkeeping. All operations must be atomic and
// linearizable across concurrent callers.
type Ledger interface {
	// Balance returns the free (not held) balance.
	Balance(ctx context.Context, asset, account string) (uint64, error)
	// HeldBalance returns the escrowed balance.
	HeldBalance(ctx context.Context, asset, account string) (uint64, error)
	// CanWithdraw returns nil if the account can send the given amount,
	// ErrLedgerInsufficientFunds or ErrLedgerAccountFrozen otherwise.
	CanWithdraw(ctx context.Context, asset, account string, amount uint64) error
	// CanDeposit returns nil if the account can receive the given amount,
	// ErrLedgerDepositCap or ErrLedgerAccountFrozen otherwise.
	CanDeposit(ctx context.Context, asset, account string, amount uint64) error
	// Hold moves the given amount from the free to the held balance.
	Hold(ctx context.Context, asset, account string, amount uint64) error
	// Release moves up to the given amount from the held back to the free
	// balance and returns the amount actually released. With bestEffort
	// a short held balance releases what is there instead of failing.
	Release(
		ctx context.Context, asset, account string, amount uint64,
		bestEffort bool,
	) (uint64, error)
	// TransferHeld moves the given amount of source's held balance to dest
	// and returns the amount actually moved. With keepOnHold the amount
	// stays escrowed at dest, otherwise it lands in dest's free balance.
	TransferHeld(
		ctx context.Context, asset, source, dest string, amount uint64,
		bestEffort, keepOnHold bool,
	) (uint64, error)
	// Mint credits newly issued units to the account's free balance.
	Mint(ctx context.Context, asset, account string, amount uint64) error
	// Burn destroys units from the account's free balance.
	Burn(ctx context.Context, asset, account string, amount uint64) error
}
