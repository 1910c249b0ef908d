// Package domain holds the value types shared across modules: principals,
// role tags, dispute types, and content hashes. Constructors validate at
// trust boundaries; direct casting bypasses validation.
package domain

import (
	"strings"

	dErrors "scholarchain/pkg/domain-errors"
)

// Principal is a unique identity reference used as an entity key. The host
// ledger supplies it as an account address; off-chain it is the authenticated
// subject of the request.
type Principal string

// PrincipalBurn is the reserved null/burn identity. It may never be bound as
// a module authority or hold a user record.
const PrincipalBurn Principal = "0x0000000000000000000000000000000000000000"

// ParsePrincipal constructs a Principal from external input.
func ParsePrincipal(s string) (Principal, error) {
	p := Principal(strings.TrimSpace(s))
	if p == "" {
		return "", dErrors.New(dErrors.CodeValidation, "principal cannot be empty")
	}
	return p, nil
}

// IsZero reports whether the principal is absent or the reserved burn
// identity.
func (p Principal) IsZero() bool {
	return p == "" || p == PrincipalBurn
}

func (p Principal) String() string { return string(p) }
