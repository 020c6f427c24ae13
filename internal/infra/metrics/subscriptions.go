package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(subscriptionsActivatedTotal, subscriptionsExpiredTotal)
}

var (
	subscriptionsActivatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_activated_total",
			Help: "Subscription activations by plan.",
		},
		[]string{"plan"},
	)

	subscriptionsExpiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Subscriptions closed by the expiry worker, by plan.",
		},
		[]string{"plan"},
	)
)

func IncSubscriptionActivated(plan string) {
	subscriptionsActivatedTotal.WithLabelValues(norm(plan)).Inc()
}

func IncSubscriptionExpired(plan string) {
	subscriptionsExpiredTotal.WithLabelValues(norm(plan)).Inc()
}
