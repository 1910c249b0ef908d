// Package metrics holds all Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	OperationsExecuted *prometheus.CounterVec
	UsersRegistered    prometheus.Counter
	VotesCast          prometheus.Counter
	DisputesRaised     prometheus.Counter
	DisputesResolved   prometheus.Counter
	RequestLatency     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return newWithRegisterer(prometheus.DefaultRegisterer)
}

// NewForTesting registers metrics against a private registry so parallel
// test packages do not collide on the default registerer.
func NewForTesting() *Metrics {
	return newWithRegisterer(prometheus.NewRegistry())
}

func newWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationsExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scholarchain_operations_executed_total",
			Help: "Ledger operations executed, by operation name and outcome",
		}, []string{"op", "outcome"}),
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "scholarchain_users_registered_total",
			Help: "Total number of registered principals",
		}),
		VotesCast: factory.NewCounter(prometheus.CounterOpts{
			Name: "scholarchain_reputation_votes_total",
			Help: "Total number of reputation votes cast",
		}),
		DisputesRaised: factory.NewCounter(prometheus.CounterOpts{
			Name: "scholarchain_disputes_raised_total",
			Help: "Total number of disputes raised",
		}),
		DisputesResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "scholarchain_disputes_resolved_total",
			Help: "Total number of disputes resolved",
		}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scholarchain_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}
}

// OperationExecuted implements chain.Observer.
func (m *Metrics) OperationExecuted(op string, height uint64, err error) {
	outcome := "commit"
	if err != nil {
		outcome = "abort"
	}
	m.OperationsExecuted.WithLabelValues(op, outcome).Inc()
}
