package domain

import dErrors "scholarchain/pkg/domain-errors"

// Role is a capability tag held by a registered user.
// Invariant: the value must be one of the supported roles.
type Role string

// Supported roles. A user holds at most MaxRoles distinct tags.
const (
	RoleAuthor   Role = "author"
	RoleReviewer Role = "reviewer"
	RoleVerifier Role = "verifier"
)

// MaxRoles bounds the role set per user.
const MaxRoles = 3

// validRoles is the single source of truth for supported role tags.
var validRoles = map[Role]bool{
	RoleAuthor:   true,
	RoleReviewer: true,
	RoleVerifier: true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported tags.
func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string { return string(r) }
