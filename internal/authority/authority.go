// Package authority implements the one-time authority binding per module.
// Binding is permanent: there is no rebind or unbind, and every privileged
// configuration setter routes through Require.
package authority

import (
	"context"
	"sync"

	"scholarchain/internal/chain"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

// Module names with a bindable authority.
const (
	ModuleIdentity   = "identity"
	ModuleReputation = "reputation"
	ModuleDispute    = "dispute"
	ModuleBank       = "bank"
	ModulePapers     = "papers"
	ModuleReviews    = "reviews"
)

var knownModules = map[string]bool{
	ModuleIdentity:   true,
	ModuleReputation: true,
	ModuleDispute:    true,
	ModuleBank:       true,
	ModulePapers:     true,
	ModuleReviews:    true,
}

// Registry holds the write-once authority cell per module.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]domain.Principal
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]domain.Principal)}
}

// Bind assigns the controlling principal for a module. It fails if the
// principal is the reserved burn identity or if a binding already exists.
func (r *Registry) Bind(ctx context.Context, module string, principal domain.Principal) error {
	if !knownModules[module] {
		return dErrors.New(dErrors.CodeValidation, "unknown module")
	}
	if principal.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "invalid principal")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, bound := r.bindings[module]; bound {
		return dErrors.New(dErrors.CodeConflict, "authority already bound")
	}

	if tx, ok := chain.TxFrom(ctx); ok {
		tx.OnRollback(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.bindings, module)
		})
	}
	r.bindings[module] = principal
	return nil
}

// Authority returns the bound principal for a module, if any.
func (r *Registry) Authority(module string) (domain.Principal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.bindings[module]
	return p, ok
}

// Require checks that caller is the bound authority for a module. It
// distinguishes an unbound module from a caller mismatch so operators can
// tell a deployment gap from an authorization failure.
func (r *Registry) Require(module string, caller domain.Principal) error {
	bound, ok := r.Authority(module)
	if !ok {
		return dErrors.New(dErrors.CodeForbidden, "authority not set")
	}
	if bound != caller {
		return dErrors.New(dErrors.CodeForbidden, "not authorized")
	}
	return nil
}
