package bank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarchain/internal/chain"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

const (
	alice = domain.Principal("0xalice")
	bob   = domain.Principal("0xbob")
)

func TestTransferMovesFunds(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	ledger.Deposit(ctx, alice, 1000)

	require.NoError(t, ledger.Transfer(ctx, alice, Custody, 400))
	assert.Equal(t, uint64(600), ledger.Balance(ctx, alice))
	assert.Equal(t, uint64(400), ledger.Balance(ctx, Custody))
}

func TestTransferInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	ledger.Deposit(ctx, alice, 100)

	err := ledger.Transfer(ctx, alice, bob, 101)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, uint64(100), ledger.Balance(ctx, alice))
	assert.Equal(t, uint64(0), ledger.Balance(ctx, bob))
}

func TestTransferZeroIsNoOp(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	require.NoError(t, ledger.Transfer(ctx, alice, bob, 0))
	assert.Equal(t, uint64(0), ledger.Balance(ctx, bob))
}

func TestTransferRollsBackInsideAbortedOperation(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	ledger.Deposit(ctx, alice, 500)

	exec := chain.NewExecutor(chain.NewClock())
	err := exec.Execute(ctx, "transfer", func(opCtx context.Context) error {
		require.NoError(t, ledger.Transfer(opCtx, alice, bob, 200))
		return errors.New("abort after transfer")
	})
	require.Error(t, err)

	assert.Equal(t, uint64(500), ledger.Balance(ctx, alice))
	assert.Equal(t, uint64(0), ledger.Balance(ctx, bob))
}

func TestDepositRollsBackInsideAbortedOperation(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	exec := chain.NewExecutor(chain.NewClock())
	_ = exec.Execute(ctx, "deposit", func(opCtx context.Context) error {
		ledger.Deposit(opCtx, alice, 50)
		return errors.New("abort")
	})

	assert.Equal(t, uint64(0), ledger.Balance(context.Background(), alice))
}
