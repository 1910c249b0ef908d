// Package bank replicates the host ledger's native token accounts. The
// identity module escrows stake through it and the papers module collects
// submission fees; both move funds into the custody account.
package bank

import (
	"context"
	"sync"

	"scholarchain/internal/chain"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

// Custody is the escrow account that holds locked stake and collected fees.
const Custody = domain.Principal("scholarchain:custody")

// Ledger is the in-memory token ledger. Mutations made inside an executor
// operation journal their prior state so aborts restore balances exactly.
type Ledger struct {
	mu       sync.RWMutex
	balances map[domain.Principal]uint64
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[domain.Principal]uint64)}
}

// Balance returns the current balance of an account. Unknown accounts hold
// zero.
func (l *Ledger) Balance(_ context.Context, account domain.Principal) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

// Deposit credits an account. Used by the authority-gated faucet operation.
func (l *Ledger) Deposit(ctx context.Context, account domain.Principal, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.set(ctx, account, l.balances[account]+amount)
}

// Transfer moves amount from one account to another. A zero amount is a
// no-op by design: withdrawing an already-zeroed stake must succeed.
func (l *Ledger) Transfer(ctx context.Context, from, to domain.Principal, amount uint64) error {
	if amount == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return dErrors.New(dErrors.CodeConflict, "insufficient balance")
	}
	l.set(ctx, from, l.balances[from]-amount)
	l.set(ctx, to, l.balances[to]+amount)
	return nil
}

// set applies a balance change and journals the prior value. Callers hold
// the write lock.
func (l *Ledger) set(ctx context.Context, account domain.Principal, value uint64) {
	if tx, ok := chain.TxFrom(ctx); ok {
		prev, existed := l.balances[account]
		tx.OnRollback(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if existed {
				l.balances[account] = prev
			} else {
				delete(l.balances, account)
			}
		})
	}
	l.balances[account] = value
}
