// File: service/metrics.go
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the election service's operational counters. Collectors are
// registered on a dedicated registry so parallel elections (and tests) do
// not collide.
type Metrics struct {
	registry *prometheus.Registry

	BallotsAccepted    prometheus.Counter
	DuplicatesRejected prometheus.Counter
	EncodingFailures   prometheus.Counter
	BlocksMined        prometheus.Counter
	MiningSeconds      prometheus.Histogram
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		BallotsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballotchain_ballots_accepted_total",
			Help: "Ballots encrypted and admitted for mining.",
		}),
		DuplicatesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballotchain_duplicates_rejected_total",
			Help: "Submissions rejected because the voter tag was already present.",
		}),
		EncodingFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballotchain_encoding_failures_total",
			Help: "Ballots that failed to serialize or encrypt.",
		}),
		BlocksMined: factory.NewCounter(prometheus.CounterOpts{
			Name: "ballotchain_blocks_mined_total",
			Help: "Blocks admitted to the chain.",
		}),
		MiningSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballotchain_mining_duration_seconds",
			Help:    "Wall time of the nonce search per mined block.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// Registry exposes the collectors for scraping or test inspection.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
