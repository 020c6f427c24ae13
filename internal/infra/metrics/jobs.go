package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobRunsTotal) }

var jobRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "job_runs_total",
		Help: "Background job executions, labeled by job and outcome.",
	},
	[]string{"job", "status"}, // e.g., job="payment_reconciler", status="ok"
)

func IncJobRun(job, status string) {
	jobRunsTotal.WithLabelValues(norm(job), norm(status)).Inc()
}
