package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(matchesCreatedTotal, matchTransitionsTotal)
}

var (
	matchesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_created_total",
			Help: "Connection requests opened.",
		},
	)

	matchTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_transitions_total",
			Help: "Match state transitions by target status.",
		},
		[]string{"to"},
	)
)

func IncMatchCreated() {
	matchesCreatedTotal.Inc()
}

func IncMatchTransition(to string) {
	matchTransitionsTotal.WithLabelValues(norm(to)).Inc()
}
