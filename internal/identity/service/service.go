// Package service orchestrates the identity & stake ledger: registration
// with stake escrow, role and profile maintenance, activity toggling,
// withdrawal, and the cross-module reputation mutations.
package service

import (
	"context"
	"errors"
	"log/slog"

	"scholarchain/internal/authority"
	"scholarchain/internal/bank"
	"scholarchain/internal/chain"
	"scholarchain/internal/events"
	"scholarchain/internal/identity/models"
	"scholarchain/internal/platform/metrics"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/platform/sentinel"
)

// UserStore is the keyed user table.
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
	Find(ctx context.Context, principal domain.Principal) (*models.User, error)
	Exists(ctx context.Context, principal domain.Principal) bool
}

// Bank moves stake between caller accounts and custody.
type Bank interface {
	Transfer(ctx context.Context, from, to domain.Principal, amount uint64) error
}

// Service holds the identity ledger's stores and runtime configuration.
type Service struct {
	users     UserStore
	bank      Bank
	authority *authority.Registry
	exec      *chain.Executor

	minStake       *chain.Value[uint64]
	trustThreshold *chain.Value[uint64]

	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher *events.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p *events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New constructs the identity service. minStake and trustThreshold are boot
// defaults; the authority-gated setters mutate them at runtime. The trust
// threshold here is the identity ledger's own knob on the 0..10000
// reputation scale; the dispute module's raise gate is configured
// independently.
func New(users UserStore, bankLedger Bank, auth *authority.Registry, exec *chain.Executor, minStake, trustThreshold uint64, opts ...Option) *Service {
	s := &Service{
		users:          users,
		bank:           bankLedger,
		authority:      auth,
		exec:           exec,
		minStake:       chain.NewValue(minStake),
		trustThreshold: chain.NewValue(trustThreshold),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the caller's user record and escrows the stake.
func (s *Service) Register(ctx context.Context, caller domain.Principal, role domain.Role, profileHash domain.ContentHash, stake uint64) (*models.User, error) {
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	if stake < s.minStake.Get() {
		return nil, dErrors.New(dErrors.CodeValidation, "insufficient stake")
	}

	var user *models.User
	err := s.exec.Execute(ctx, "identity.register", func(opCtx context.Context) error {
		if s.users.Exists(opCtx, caller) {
			return dErrors.New(dErrors.CodeConflict, "already registered")
		}

		if err := s.bank.Transfer(opCtx, caller, bank.Custody, stake); err != nil {
			return dErrors.Wrap(err, dErrors.CodeConflict, "failed to escrow stake")
		}

		u, err := models.NewUser(caller, role, profileHash, stake, s.minStake.Get(), s.exec.Height())
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, err.Error())
		}
		if err := s.users.Save(opCtx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
	s.emit(ctx, events.Event{
		Action:    events.ActionUserRegistered,
		Principal: caller,
		Height:    s.exec.Height(),
		Detail:    role.String(),
	})
	return user, nil
}

// AddRole appends a role to the caller's role set.
func (s *Service) AddRole(ctx context.Context, caller domain.Principal, role domain.Role) (*models.User, error) {
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid role")
	}

	var user *models.User
	err := s.exec.Execute(ctx, "identity.add_role", func(opCtx context.Context) error {
		u, err := s.findActive(opCtx, caller)
		if err != nil {
			return err
		}
		if err := u.CanAddRole(role); err != nil {
			return err
		}
		u.ApplyAddRole(role)
		if err := s.users.Save(opCtx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.Event{
		Action:    events.ActionRoleAdded,
		Principal: caller,
		Height:    s.exec.Height(),
		Detail:    role.String(),
	})
	return user, nil
}

// UpdateProfile replaces the caller's profile reference. The registration
// height is touched as well, mirroring the original ledger behavior.
func (s *Service) UpdateProfile(ctx context.Context, caller domain.Principal, profileHash domain.ContentHash) (*models.User, error) {
	var user *models.User
	err := s.exec.Execute(ctx, "identity.update_profile", func(opCtx context.Context) error {
		u, err := s.findActive(opCtx, caller)
		if err != nil {
			return err
		}
		u.ProfileHash = profileHash
		u.RegisteredAt = s.exec.Height()
		if err := s.users.Save(opCtx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.Event{
		Action:    events.ActionProfileUpdated,
		Principal: caller,
		Height:    s.exec.Height(),
	})
	return user, nil
}

// ToggleActive flips the target's active flag. Only the identity authority
// may call it; stake is untouched.
func (s *Service) ToggleActive(ctx context.Context, caller, target domain.Principal) (*models.User, error) {
	var user *models.User
	err := s.exec.Execute(ctx, "identity.toggle_active", func(opCtx context.Context) error {
		if err := s.authority.Require(authority.ModuleIdentity, caller); err != nil {
			return err
		}
		u, err := s.find(opCtx, target)
		if err != nil {
			return err
		}
		u.Active = !u.Active
		if err := s.users.Save(opCtx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.Event{
		Action:    events.ActionActiveToggled,
		Principal: caller,
		Subject:   target.String(),
		Height:    s.exec.Height(),
	})
	return user, nil
}

// WithdrawStake returns the caller's locked stake. The record must be
// inactive; a repeat call finds a zero stake and transfers nothing, which is
// deliberate; transferring 0 has no effect.
func (s *Service) WithdrawStake(ctx context.Context, caller domain.Principal) (uint64, error) {
	var amount uint64
	err := s.exec.Execute(ctx, "identity.withdraw_stake", func(opCtx context.Context) error {
		u, err := s.find(opCtx, caller)
		if err != nil {
			return err
		}
		if u.Active {
			return dErrors.New(dErrors.CodeConflict, "stake still locked while active")
		}

		amount = u.Stake
		if err := s.bank.Transfer(opCtx, bank.Custody, caller, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to release stake")
		}
		u.Stake = 0
		if err := s.users.Save(opCtx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.emit(ctx, events.Event{
		Action:    events.ActionStakeWithdrawn,
		Principal: caller,
		Height:    s.exec.Height(),
	})
	return amount, nil
}

// GetUser returns a user record.
func (s *Service) GetUser(ctx context.Context, principal domain.Principal) (*models.User, error) {
	return s.find(ctx, principal)
}

// IsTrusted reports whether the principal clears the identity ledger's own
// trust threshold.
func (s *Service) IsTrusted(ctx context.Context, principal domain.Principal) (bool, error) {
	u, err := s.find(ctx, principal)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.IsTrusted(s.trustThreshold.Get()), nil
}

// Reputation returns the current reputation score of a registered user.
func (s *Service) Reputation(ctx context.Context, principal domain.Principal) (uint64, error) {
	u, err := s.find(ctx, principal)
	if err != nil {
		return 0, err
	}
	return u.Reputation, nil
}

// ApplyPenalty subtracts amount from the target's reputation, clamped at
// zero. It must run inside the caller's executor operation: failures abort
// the whole enclosing operation.
func (s *Service) ApplyPenalty(ctx context.Context, target domain.Principal, amount uint64) error {
	u, err := s.find(ctx, target)
	if err != nil {
		return err
	}
	u.ApplyPenalty(amount)
	if err := s.users.Save(ctx, u); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}
	return nil
}

// GrantReputation adds the windowed vote sum to the target's reputation,
// rejecting the whole grant when the configured maximum would be exceeded.
// Like ApplyPenalty it runs inside the caller's executor operation.
func (s *Service) GrantReputation(ctx context.Context, target domain.Principal, sum, maxReputation uint64) error {
	u, err := s.find(ctx, target)
	if err != nil {
		return err
	}
	if err := u.CanGrantReputation(sum, maxReputation); err != nil {
		return err
	}
	u.ApplyGrant(sum)
	if err := s.users.Save(ctx, u); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}
	return nil
}

// IsActive reports whether the principal is registered and active.
func (s *Service) IsActive(ctx context.Context, principal domain.Principal) bool {
	u, err := s.find(ctx, principal)
	return err == nil && u.Active
}

// HasRole reports whether the principal is registered, active, and holds
// the role.
func (s *Service) HasRole(ctx context.Context, principal domain.Principal, role domain.Role) bool {
	u, err := s.find(ctx, principal)
	return err == nil && u.Active && u.HasRole(role)
}

// SetMinStake updates the registration minimum. Identity-authority gated.
func (s *Service) SetMinStake(ctx context.Context, caller domain.Principal, v uint64) error {
	return s.setConfig(ctx, "identity.set_min_stake", caller, s.minStake, v)
}

// SetTrustThreshold updates the identity trust threshold.
// Identity-authority gated.
func (s *Service) SetTrustThreshold(ctx context.Context, caller domain.Principal, v uint64) error {
	return s.setConfig(ctx, "identity.set_trust_threshold", caller, s.trustThreshold, v)
}

// MinStake exposes the current registration minimum.
func (s *Service) MinStake() uint64 { return s.minStake.Get() }

// TrustThreshold exposes the current identity trust threshold.
func (s *Service) TrustThreshold() uint64 { return s.trustThreshold.Get() }

func (s *Service) setConfig(ctx context.Context, op string, caller domain.Principal, cell *chain.Value[uint64], v uint64) error {
	err := s.exec.Execute(ctx, op, func(opCtx context.Context) error {
		if err := s.authority.Require(authority.ModuleIdentity, caller); err != nil {
			return err
		}
		cell.Set(opCtx, v)
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(ctx, events.Event{
		Action:    events.ActionConfigChanged,
		Principal: caller,
		Height:    s.exec.Height(),
		Detail:    op,
	})
	return nil
}

func (s *Service) find(ctx context.Context, principal domain.Principal) (*models.User, error) {
	u, err := s.users.Find(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, nil
}

func (s *Service) findActive(ctx context.Context, principal domain.Principal) (*models.User, error) {
	u, err := s.find(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, dErrors.New(dErrors.CodeConflict, "user is not active")
	}
	return u, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher != nil {
		s.publisher.Emit(ctx, event)
	}
}
