package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Maintenance records background storage jobs. Nil-safe like Storefront.
type Maintenance struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	purged   prometheus.Counter
}

// NewMaintenance registers the maintenance job metrics on the provided registerer.
func NewMaintenance(reg prometheus.Registerer) *Maintenance {
	if reg == nil {
		return &Maintenance{}
	}
	m := &Maintenance{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maintenance_job_runs_total",
			Help:      "Maintenance job executions by job and result.",
		}, []string{"job", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "maintenance_job_duration_seconds",
			Help:      "Duration of maintenance jobs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_entries_purged_total",
			Help:      "Expired key-value entries removed from SQL storage.",
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.purged)
	return m
}

// ObserveRun records one job execution.
func (m *Maintenance) ObserveRun(job string, duration time.Duration, err error) {
	if m == nil || m.runs == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.runs.WithLabelValues(normalizeLabel(job), result).Inc()
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

func (m *Maintenance) AddPurged(n int64) {
	if m == nil || m.purged == nil || n <= 0 {
		return
	}
	m.purged.Add(float64(n))
}
