package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "scholarchain/pkg/domain-errors"
)

func TestParsePrincipal(t *testing.T) {
	p, err := ParsePrincipal("  0xabc123  ")
	require.NoError(t, err)
	assert.Equal(t, Principal("0xabc123"), p)

	_, err = ParsePrincipal("   ")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestPrincipalIsZero(t *testing.T) {
	assert.True(t, Principal("").IsZero())
	assert.True(t, PrincipalBurn.IsZero())
	assert.False(t, Principal("0xabc").IsZero())
}

func TestParseRole(t *testing.T) {
	for _, tag := range []string{"author", "reviewer", "verifier"} {
		r, err := ParseRole(tag)
		require.NoError(t, err)
		assert.Equal(t, tag, r.String())
	}

	_, err := ParseRole("editor")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestParseDisputeType(t *testing.T) {
	_, err := ParseDisputeType("plagiarism")
	require.NoError(t, err)

	_, err = ParseDisputeType("vandalism")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestParseContentHash(t *testing.T) {
	valid := strings.Repeat("a", HashLength)
	h, err := ParseContentHash(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, h.String())

	_, err = ParseContentHash(strings.Repeat("a", HashLength-1))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = ParseContentHash(strings.Repeat("Z", HashLength))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
