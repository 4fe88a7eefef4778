package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReactionsRecorded counts reactions appended to the log by target and type.
	ReactionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgefeed_reactions_recorded_total",
		Help: "Total number of reactions appended to the reaction log",
	}, []string{"target_type", "reaction_type", "source"})

	// DanglingReferences counts events whose target, author or user did not resolve.
	DanglingReferences = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgefeed_dangling_references_total",
		Help: "Total number of recorded events that referenced a missing entity",
	}, []string{"kind"})

	// DiversityScores records every recomputed diversity score.
	DiversityScores = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridgefeed_diversity_score",
		Help:    "Diversity scores produced on each recompute",
		Buckets: []float64{0, 5, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	}, []string{"target_type"})

	// DriftPassDuration records how long a full drift pass takes.
	DriftPassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bridgefeed_drift_pass_duration_seconds",
		Help:    "Duration of a full opinion drift pass",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})

	// DriftedUsers records how many profiles moved in one pass.
	DriftedUsers = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bridgefeed_drift_pass_users_moved",
		Help:    "Number of user profiles updated by a drift pass",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	// PopulationGenerations counts demo generations by outcome.
	PopulationGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgefeed_population_generations_total",
		Help: "Total number of demo population generations",
	}, []string{"outcome"})

	// ArchiveRuns counts archive snapshots by outcome.
	ArchiveRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgefeed_archive_runs_total",
		Help: "Total number of archive snapshots written",
	}, []string{"outcome"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgefeed_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

// TrackDriftPass returns a function that records the pass latency and the
// number of moved users when called.
func TrackDriftPass() func(moved int) {
	start := time.Now()
	return func(moved int) {
		DriftPassDuration.Observe(time.Since(start).Seconds())
		DriftedUsers.Observe(float64(moved))
	}
}
