package inmemoryledger

import (
	"context"
	"sync"

	"github.com/sunridge-network/settled/internal/core/ports"
	"github.com/sunridge-network/settled/pkg/mathutil"
)

type account struct {
	free   uint64
	held   uint64
	frozen bool
	// cap limits free+held after a deposit; zero means uncapped.
	cap uint64
}

// Ledger is an in-memory implementation of the ports.Ledger interface. It
// is the system of record for simulated deployments and the canonical
// fake for tests. All operations are atomic under a single mutex.
type Ledger struct {
	accounts map[string]*account
	locker   *sync.Mutex
}

func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[string]*account),
		locker:   &sync.Mutex{},
	}
}

// Fund credits the free balance outside of any settlement flow, for
// genesis funding and tests.
func (l *Ledger) Fund(asset, acc string, amount uint64) {
	l.locker.Lock()
	defer l.locker.Unlock()

	l.account(asset, acc).free += amount
}

// Freeze disables withdrawals and deposits for the (asset, account) pair.
func (l *Ledger) Freeze(asset, acc string) {
	l.locker.Lock()
	defer l.locker.Unlock()

	l.account(asset, acc).frozen = true
}

// SetDepositCap caps the total balance the pair can reach via deposits.
func (l *Ledger) SetDepositCap(asset, acc string, cap uint64) {
	l.locker.Lock()
	defer l.locker.Unlock()

	l.account(asset, acc).cap = cap
}

func (l *Ledger) Balance(
	_ context.Context, asset, acc string,
) (uint64, error) {
	l.locker.Lock()
	defer l.locker.Unlock()

	return l.account(asset, acc).free, nil
}

func (l *Ledger) HeldBalance(
	_ context.Context, asset, acc string,
) (uint64, error) {
	l.locker.Lock()
	defer l.locker.Unlock()

	return l.account(asset, acc).held, nil
}

func (l *Ledger) CanWithdraw(
	_ context.Context, asset, acc string, amount uint64,
) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	a := l.account(asset, acc)
	if a.frozen {
		return ports.ErrLedgerAccountFrozen
	}
	if a.free < amount {
		return ports.ErrLedgerInsufficientFunds
	}
	return nil
}

func (l *Ledger) CanDeposit(
	_ context.Context, asset, acc string, amount uint64,
) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	a := l.account(asset, acc)
	if a.frozen {
		return ports.ErrLedgerAccountFrozen
	}
	if a.cap > 0 {
		total, err := mathutil.CheckedAdd(a.free, a.held)
		if err != nil {
			return ports.ErrLedgerDepositCap
		}
		if total+amount < total || total+amount > a.cap {
			return ports.ErrLedgerDepositCap
		}
	}
	return nil
}

func (l *Ledger) Hold(
	_ context.Context, asset, acc string, amount uint64,
) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	a := l.account(asset, acc)
	if a.frozen {
		return ports.ErrLedgerAccountFrozen
	}
	if a.free < amount {
		return ports.ErrLedgerInsufficientFunds
	}
	a.free -= amount
	a.held += amount
	return nil
}

func (l *Ledger) Release(
	_ context.Context, asset, acc string, amount uint64, bestEffort bool,
) (uint64, error) {
	l.locker.Lock()
	defer l.locker.Unlock()

	a := l.account(asset, acc)
	toRelease := amount
	if a.held < amount {
		if !bestEffort {
			return 0, ports.ErrLedgerInsufficientFunds
		}
		toRelease = a.held
	}
	a.held -= toRelease
	a.free += toRelease
	return toRelease, nil
}

func (l *Ledger) TransferHeld(
	_ context.Context, asset, source, dest string, amount uint64,
	bestEffort, keepOnHold bool,
) (uint64, error) {
	l.locker.Lock()
	defer l.locker.Unlock()

	src := l.account(asset, source)
	toMove := amount
	if src.held < amount {
		if !bestEffort {
			return 0, ports.ErrLedgerInsufficientFunds
		}
		toMove = src.held
	}

	dst := l.account(asset, dest)
	if dst.frozen {
		return 0, ports.ErrLedgerAccountFrozen
	}
	src.held -= toMove
	if keepOnHold {
		dst.held += toMove
	} else {
		dst.free += toMove
	}
	return toMove, nil
}

func (l *Ledger) Mint(
	_ context.Context, asset, acc string, amount uint64,
) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	a := l.account(asset, acc)
	newFree, err := mathutil.CheckedAdd(a.free, amount)
	if err != nil {
		return err
	}
	a.free = newFree
	return nil
}

func (l *Ledger) Burn(
	_ context.Context, asset, acc string, amount uint64,
) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	a := l.account(asset, acc)
	if a.free < amount {
		return ports.ErrLedgerInsufficientFunds
	}
	a.free -= amount
	return nil
}

func (l *Ledger) account(asset, acc string) *account {
	key := asset + ":" + acc
	a, ok := l.accounts[key]
	if !ok {
		a = &account{}
		l.accounts[key] = a
	}
	return a
}
