// Package config loads process configuration from environment variables so
// main stays lean.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config captures server and governance configuration. Governance values are
// the boot defaults; the authority-gated setters mutate the live values at
// runtime.
type Config struct {
	Addr          string `env:"SCHOLARCHAIN_ADDR" envDefault:":8080"`
	JWTSigningKey string `env:"SCHOLARCHAIN_JWT_KEY" envDefault:"dev-secret-key-change-in-production"`

	// Event pipeline. Kafka and Postgres sinks are optional; with neither
	// configured events stay in the in-memory store.
	KafkaBrokers string `env:"SCHOLARCHAIN_KAFKA_BROKERS"`
	KafkaTopic   string `env:"SCHOLARCHAIN_KAFKA_TOPIC" envDefault:"scholarchain.governance"`
	PostgresDSN  string `env:"SCHOLARCHAIN_POSTGRES_DSN"`

	Governance Governance
}

// Governance holds the configurable knobs of the trust engine. The identity
// and governance trust thresholds are independent by design: the former
// gates isTrusted on the 0..10000 reputation scale, the latter gates raising
// disputes.
type Governance struct {
	MinStake               uint64 `env:"SCHOLARCHAIN_MIN_STAKE" envDefault:"1000"`
	MaxReputation          uint64 `env:"SCHOLARCHAIN_MAX_REPUTATION" envDefault:"10000"`
	VotingPeriod           uint64 `env:"SCHOLARCHAIN_VOTING_PERIOD" envDefault:"100"`
	DisputeVotePeriod      uint64 `env:"SCHOLARCHAIN_DISPUTE_VOTE_PERIOD" envDefault:"100"`
	DisputePenalty         uint64 `env:"SCHOLARCHAIN_DISPUTE_PENALTY" envDefault:"10"`
	TrustThreshold         uint64 `env:"SCHOLARCHAIN_TRUST_THRESHOLD" envDefault:"50"`
	IdentityTrustThreshold uint64 `env:"SCHOLARCHAIN_IDENTITY_TRUST_THRESHOLD" envDefault:"5000"`
	SubmissionFee          uint64 `env:"SCHOLARCHAIN_SUBMISSION_FEE" envDefault:"10"`
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
