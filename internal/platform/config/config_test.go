package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, uint64(1000), cfg.Governance.MinStake)
	assert.Equal(t, uint64(10000), cfg.Governance.MaxReputation)
	assert.Equal(t, uint64(50), cfg.Governance.TrustThreshold)
	assert.Equal(t, uint64(5000), cfg.Governance.IdentityTrustThreshold)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SCHOLARCHAIN_MIN_STAKE", "2500")
	t.Setenv("SCHOLARCHAIN_ADDR", ":9999")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, uint64(2500), cfg.Governance.MinStake)
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv("SCHOLARCHAIN_VOTING_PERIOD", "not-a-number")

	_, err := FromEnv()
	require.Error(t, err)
}
