package chain

import "context"

// Tx is the per-operation undo journal. Stores register an undo entry for
// every mutation they apply; if the operation fails, the executor unwinds
// the journal in reverse so no partial write survives. This covers nested
// cross-module calls too: a dispute resolution's penalty sub-call journals
// into the same Tx as the dispute mutation itself.
type Tx struct {
	undo []func()
}

// OnRollback registers an undo entry. Entries run in reverse registration
// order during rollback.
func (t *Tx) OnRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *Tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores the operation journal in context for downstream store usage.
func WithTx(ctx context.Context, tx *Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// TxFrom extracts the operation journal from context if present. Stores
// mutate directly when no journal is present (reads, test setup).
func TxFrom(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txKey).(*Tx)
	return tx, ok
}
