package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(notificationsTotal, jobRunsTotal) }

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Monitoring notifications by kind and delivery result.",
		},
		[]string{"kind", "result"},
	)

	jobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_job_runs_total",
			Help: "Background job runs, labeled by job and status.",
		},
		[]string{"job", "status"}, // 'ok', 'failed'
	)
)

func IncNotification(kind, result string) {
	notificationsTotal.WithLabelValues(norm(kind), norm(result)).Inc()
}

func IncJobRun(job, status string) {
	jobRunsTotal.WithLabelValues(norm(job), norm(status)).Inc()
}
