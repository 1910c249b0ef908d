package domain

import (
	"strings"

	dErrors "scholarchain/pkg/domain-errors"
)

// ContentHash references off-chain content (profile documents, paper and
// review bodies) by its hex-encoded SHA-256 digest.
// Invariant: exactly HashLength lowercase hex characters.
type ContentHash string

// HashLength is the fixed length of a hex-encoded SHA-256 digest.
const HashLength = 64

// ParseContentHash constructs a ContentHash from external input.
func ParseContentHash(s string) (ContentHash, error) {
	h := ContentHash(strings.TrimSpace(s))
	if err := h.Validate(); err != nil {
		return "", err
	}
	return h, nil
}

// Validate checks the fixed-length lowercase hex invariant.
func (h ContentHash) Validate() error {
	if len(h) != HashLength {
		return dErrors.Newf(dErrors.CodeValidation, "content hash must be %d characters", HashLength)
	}
	for _, c := range h {
		if !isHex(c) {
			return dErrors.New(dErrors.CodeValidation, "content hash must be lowercase hex")
		}
	}
	return nil
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

func (h ContentHash) String() string { return string(h) }
