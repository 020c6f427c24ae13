package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(paymentsInitiatedTotal, paymentsFinalizedTotal, paymentsRevenueTotal)
}

var (
	paymentsInitiatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_initiated_total",
			Help: "Checkout sessions opened, labeled by plan.",
		},
		[]string{"plan"},
	)

	paymentsFinalizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_finalized_total",
			Help: "Payments reaching a terminal status (paid/failed).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of successful payments, labeled by currency.",
		},
		[]string{"currency"},
	)
)

func IncPaymentInitiated(plan string) {
	paymentsInitiatedTotal.WithLabelValues(norm(plan)).Inc()
}

func IncPaymentFinalized(status string) {
	paymentsFinalizedTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}
