package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching engine Prometheus metrics.
var (
	RankingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradematch",
			Name:      "ranking_duration_seconds",
			Help:      "Duration of one ranking pass in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "strategy"}, // recommendations / instant_match
	)

	CandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradematch",
			Name:      "candidates_total",
			Help:      "Candidate pairings evaluated by the ranking engine",
		},
		[]string{"operation", "result"}, // result: "scored" / "skipped"
	)
)

var matchMetricsRegistered bool

// RegisterMatchingMetrics registers Prometheus matching metrics. Must be called once from main.
func RegisterMatchingMetrics() {
	if matchMetricsRegistered {
		return
	}
	prometheus.MustRegister(RankingDuration)
	prometheus.MustRegister(CandidatesTotal)
	matchMetricsRegistered = true
}
