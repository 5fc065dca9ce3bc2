// internal/app/system/metrics/metrics.go
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stratasched"

var (
	once sync.Once

	rpcCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_calls_total",
			Help:      "Count of remote scheduler calls by method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Latency of remote scheduler calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	boardsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boards_active",
			Help:      "Number of live calendar boards.",
		},
	)

	moves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_moves_total",
			Help:      "Drag and resize mutations by event kind and result.",
		},
		[]string{"kind", "result"},
	)

	pollsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_skipped_total",
			Help:      "Auto-refresh ticks skipped because a mutation was in flight.",
		},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Background job runs by job and outcome.",
		},
		[]string{"job", "outcome"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of background job runs.",
			Buckets:   []float64{.001, .01, .1, 1, 10, 60, 300},
		},
		[]string{"job"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(rpcCalls, rpcDuration, boardsActive, moves, pollsSkipped, jobRuns, jobDuration)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRPC records one remote call.
func ObserveRPC(method string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	rpcCalls.WithLabelValues(method, outcome).Inc()
	rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

func BoardCreated() {
	boardsActive.Inc()
}

func BoardDestroyed() {
	boardsActive.Dec()
}

// IncMove counts a finished drag/resize; result is "ok" or "reverted".
func IncMove(kind, result string) {
	moves.WithLabelValues(kind, result).Inc()
}

func IncPollSkipped() {
	pollsSkipped.Inc()
}

// ObserveJob records one background job run; outcome is "ok", "error" or
// "cancelled".
func ObserveJob(job, outcome string, d time.Duration) {
	jobRuns.WithLabelValues(job, outcome).Inc()
	jobDuration.WithLabelValues(job).Observe(d.Seconds())
}
