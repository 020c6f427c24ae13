package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(tripsCreatedTotal, tripsClosedTotal)
}

var (
	tripsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trips_created_total",
			Help: "Trips published on the marketplace.",
		},
	)

	tripsClosedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trips_closed_total",
			Help: "Trips moved to a terminal status (completed/cancelled).",
		},
		[]string{"status"},
	)
)

func IncTripCreated() {
	tripsCreatedTotal.Inc()
}

func IncTripClosed(status string) {
	tripsClosedTotal.WithLabelValues(norm(status)).Inc()
}
