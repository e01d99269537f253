package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "o365sync_runs_total",
			Help: "Reconciliation runs by outcome",
		},
		[]string{"outcome"},
	)

	ApplyCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "o365sync_apply_calls_total",
			Help: "Apply calls to target lists by record type and result",
		},
		[]string{"record_type", "result"},
	)

	ResolvedEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "o365sync_resolved_entries",
			Help: "Entries in the last resolved exclusion set by record type",
		},
		[]string{"record_type"},
	)

	FeedRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "o365sync_feed_request_duration_seconds",
			Help:    "Endpoint web service request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"request"},
	)

	LogEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "o365sync_log_entries_total",
			Help: "Log entries at warning level or above",
		},
		[]string{"level"},
	)
)

// Register registers every collector on reg, or the default registerer if nil.
// Collectors that are already registered are skipped.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{Runs, ApplyCalls, ResolvedEntries, FeedRequestDuration, LogEntries} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
