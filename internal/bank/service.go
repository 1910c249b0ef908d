package bank

import (
	"context"
	"log/slog"

	"scholarchain/internal/authority"
	"scholarchain/internal/chain"
	"scholarchain/internal/events"
	"scholarchain/pkg/domain"
)

// Service wraps the ledger in the operation executor for the mint path.
// On the host chain deposits arrive as native transfers; off-chain the
// bank authority mints balances so the rest of the system can be driven.
type Service struct {
	ledger    *Ledger
	authority *authority.Registry
	exec      *chain.Executor

	logger    *slog.Logger
	publisher *events.Publisher
}

type ServiceOption func(*Service)

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(p *events.Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func NewService(ledger *Ledger, auth *authority.Registry, exec *chain.Executor, opts ...ServiceOption) *Service {
	s := &Service{ledger: ledger, authority: auth, exec: exec}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deposit credits an account. Bank-authority gated.
func (s *Service) Deposit(ctx context.Context, caller, account domain.Principal, amount uint64) error {
	err := s.exec.Execute(ctx, "bank.deposit", func(opCtx context.Context) error {
		if err := s.authority.Require(authority.ModuleBank, caller); err != nil {
			return err
		}
		s.ledger.Deposit(opCtx, account, amount)
		return nil
	})
	if err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.Emit(ctx, events.Event{
			Action:    events.ActionDeposit,
			Principal: caller,
			Subject:   account.String(),
			Height:    s.exec.Height(),
		})
	}
	return nil
}

// Balance returns the current balance of an account.
func (s *Service) Balance(ctx context.Context, account domain.Principal) uint64 {
	return s.ledger.Balance(ctx, account)
}
