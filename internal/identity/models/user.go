// Package models holds the identity ledger aggregate.
package models

import (
	"slices"

	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

// User is the identity record for a registered principal.
//
// Invariants:
//   - exactly one record per principal; records are never deleted
//   - Roles is an ordered set of at most domain.MaxRoles distinct tags
//   - Reputation stays within 0..max-reputation (enforced at grant time)
//   - Stake is held in custody while the record exists; it is zeroed only by
//     an inactive caller-initiated withdrawal
type User struct {
	Principal    domain.Principal   `json:"principal"`
	Roles        []domain.Role      `json:"roles"`
	Reputation   uint64             `json:"reputation"`
	Stake        uint64             `json:"stake"`
	ProfileHash  domain.ContentHash `json:"profile_hash"`
	RegisteredAt uint64             `json:"registered_at"`
	Active       bool               `json:"active"`
}

// NewUser validates registration invariants and builds the record.
func NewUser(principal domain.Principal, role domain.Role, profileHash domain.ContentHash, stake, minStake, height uint64) (*User, error) {
	if principal.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "principal cannot be the burn identity")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	if stake < minStake {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "insufficient stake")
	}
	return &User{
		Principal:    principal,
		Roles:        []domain.Role{role},
		Reputation:   0,
		Stake:        stake,
		ProfileHash:  profileHash,
		RegisteredAt: height,
		Active:       true,
	}, nil
}

// HasRole reports whether the user holds the given role tag.
func (u *User) HasRole(role domain.Role) bool {
	return slices.Contains(u.Roles, role)
}

// CanAddRole checks the role-set invariants before appending.
func (u *User) CanAddRole(role domain.Role) error {
	if u.HasRole(role) {
		return dErrors.New(dErrors.CodeCapacity, "role already held")
	}
	if len(u.Roles) >= domain.MaxRoles {
		return dErrors.New(dErrors.CodeCapacity, "role limit reached")
	}
	return nil
}

// ApplyAddRole appends the role. Call CanAddRole first.
func (u *User) ApplyAddRole(role domain.Role) {
	u.Roles = append(u.Roles, role)
}

// ApplyPenalty subtracts amount from reputation, clamping at zero.
// Underflow is not an error: a target with less reputation than the penalty
// simply drops to zero.
func (u *User) ApplyPenalty(amount uint64) {
	if amount >= u.Reputation {
		u.Reputation = 0
		return
	}
	u.Reputation -= amount
}

// CanGrantReputation checks the configured maximum.
func (u *User) CanGrantReputation(sum, maxReputation uint64) error {
	if u.Reputation+sum > maxReputation {
		return dErrors.New(dErrors.CodeCapacity, "reputation overflow")
	}
	return nil
}

// ApplyGrant adds the windowed vote sum. Call CanGrantReputation first.
func (u *User) ApplyGrant(sum uint64) {
	u.Reputation += sum
}

// IsTrusted reports whether the user clears the given trust threshold.
func (u *User) IsTrusted(threshold uint64) bool {
	return u.Active && u.Reputation >= threshold
}

// Clone deep-copies the record so store snapshots stay isolated from caller
// mutations.
func (u *User) Clone() *User {
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}
