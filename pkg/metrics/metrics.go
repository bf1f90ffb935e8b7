//go:generate mockgen -source metrics.go -destination mocks/metrics.go

// Package metrics records per-run deployment metrics and pushes them to a Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "argocd_deployer"

// Run holds the metrics of one invocation in its own registry, so a push only ever carries this run
type Run struct {
	Registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	RollbacksTotal    *prometheus.CounterVec
	HealthPolls       prometheus.Gauge
	HealthDuration    prometheus.Gauge
	AncillaryFailures *prometheus.CounterVec
	LastRunTimestamp  prometheus.Gauge
}

func NewRun() *Run {
	reg := prometheus.NewRegistry()

	r := &Run{
		Registry: reg,
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Deploy and rollback operations by mode and result.",
		}, []string{"mode", "result"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Wall time of a run from validation to finalization.",
			Buckets:   []float64{30, 60, 120, 300, 600, 1200, 1800, 3600},
		}, []string{"mode"}),
		RollbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollbacks_total",
			Help:      "Rollbacks issued by kind (auto or manual) and outcome.",
		}, []string{"kind", "outcome"}),
		HealthPolls: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "health_polls",
			Help:      "Health samples taken during the last observation.",
		}),
		HealthDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "health_check_duration_seconds",
			Help:      "Time spent waiting for the application to settle.",
		}),
		AncillaryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ancillary_failures_total",
			Help:      "Best-effort calls that failed, by action.",
		}, []string{"action"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished.",
		}),
	}

	reg.MustRegister(
		r.OperationsTotal,
		r.OperationDuration,
		r.RollbacksTotal,
		r.HealthPolls,
		r.HealthDuration,
		r.AncillaryFailures,
		r.LastRunTimestamp,
	)

	return r
}

// ObserveRun records the final result of a run
func (r *Run) ObserveRun(mode, result string, elapsed time.Duration, finished time.Time) {
	r.OperationsTotal.WithLabelValues(mode, result).Inc()
	r.OperationDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	r.LastRunTimestamp.Set(float64(finished.Unix()))
}

// ObserveHealth records the last health observation
func (r *Run) ObserveHealth(polls int, elapsed time.Duration) {
	r.HealthPolls.Set(float64(polls))
	r.HealthDuration.Set(elapsed.Seconds())
}

// Pusher sends a run's metrics somewhere
type Pusher interface {
	Push(ctx context.Context, app string, run *Run) error
}

// Pushgateway pushes to a Prometheus Pushgateway, grouped by application
type Pushgateway struct {
	URL string
	Job string
}

func NewPushgateway(url, job string) *Pushgateway {
	if job == "" {
		job = "argocd_deployer"
	}

	return &Pushgateway{
		URL: url,
		Job: job,
	}
}

func (p *Pushgateway) Push(ctx context.Context, app string, run *Run) error {
	err := push.New(p.URL, p.Job).
		Gatherer(run.Registry).
		Grouping("app", app).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("could not push metrics to %s: %w", p.URL, err)
	}

	return nil
}
