package authority

import (
	"context"
	"log/slog"

	"scholarchain/internal/chain"
	"scholarchain/internal/events"
	"scholarchain/pkg/domain"
)

// Service wraps the registry in the operation executor so bindings are
// sequenced and auditable like every other ledger write. Binding is
// first-come: whoever binds an unbound module first controls it, mirroring
// the deploy-time wiring of the host ledger.
type Service struct {
	registry *Registry
	exec     *chain.Executor

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

func NewService(registry *Registry, exec *chain.Executor, opts ...ServiceOption) *Service {
	s := &Service{registry: registry, exec: exec}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind assigns the controlling principal for a module, exactly once.
func (s *Service) Bind(ctx context.Context, caller domain.Principal, module string, principal domain.Principal) error {
	err := s.exec.Execute(ctx, "authority.bind", func(opCtx context.Context) error {
		return s.registry.Bind(opCtx, module, principal)
	})
	if err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.Emit(ctx, events.Event{
			Action:    events.ActionAuthorityBound,
			Principal: caller,
			Subject:   module,
			Height:    s.exec.Height(),
			Detail:    principal.String(),
		})
	}
	return nil
}

// Authority returns the bound principal for a module, if any.
func (s *Service) Authority(module string) (domain.Principal, bool) {
	return s.registry.Authority(module)
}
