// Package health polls an application's health until it settles, times out,
// or, in fail-fast mode, reports its first bad reading.
package health

import (
	"context"
	"time"

	"github.com/porter-dev/argocd-deployer/internal/logger"
	"github.com/porter-dev/argocd-deployer/pkg/argocd"
)

// Classify folds whatever health the controller reports into the statuses the orchestrator acts on
func Classify(status argocd.HealthStatus) argocd.HealthStatus {
	switch status {
	case argocd.HealthHealthy, argocd.HealthDegraded, argocd.HealthProgressing, argocd.HealthMissing:
		return status
	default:
		return argocd.HealthUnknown
	}
}

// IsTerminalFailure reports whether status ends a fail-fast observation
func IsTerminalFailure(status argocd.HealthStatus) bool {
	return status == argocd.HealthDegraded || status == argocd.HealthMissing
}

// Observation is the result of one Observe call
type Observation struct {
	// Status is the last classified reading
	Status  argocd.HealthStatus
	Elapsed time.Duration
	Polls   int
	Outcome argocd.Outcome
}

// Healthy is nil-safe
func (o *Observation) Healthy() bool {
	return o != nil && o.Outcome == argocd.OutcomeSuccess
}

// Monitor samples application health through a Controller
type Monitor struct {
	controller argocd.Controller
	logger     *logger.Logger

	// Sleep and Now are replaced in tests
	Sleep func(time.Duration)
	Now   func() time.Time
}

func NewMonitor(controller argocd.Controller, l *logger.Logger) *Monitor {
	return &Monitor{
		controller: controller,
		logger:     l,
		Sleep:      time.Sleep,
		Now:        time.Now,
	}
}

// Observe polls the application every interval until it is Healthy or timeout elapses.
// With failFast set the first Degraded or Missing reading ends the observation.
// The sleep between polls is not interrupted by ctx; only the next controller call sees it.
func (m *Monitor) Observe(ctx context.Context, app string, interval, timeout time.Duration, failFast bool) (*Observation, error) {
	start := m.Now()
	obs := &Observation{Status: argocd.HealthUnknown}

	for {
		obs.Status = m.sample(ctx, app)
		obs.Polls++
		obs.Elapsed = m.Now().Sub(start)

		m.logger.Debug().Caller().Msgf("health of %s is %s after %s (poll %d)", app, obs.Status, obs.Elapsed, obs.Polls)

		if obs.Status == argocd.HealthHealthy {
			obs.Outcome = argocd.OutcomeSuccess
			return obs, nil
		}

		if failFast && IsTerminalFailure(obs.Status) {
			obs.Outcome = argocd.OutcomeFailed
			return obs, nil
		}

		if obs.Elapsed+interval > timeout {
			obs.Outcome = argocd.OutcomeTimedOut
			return obs, nil
		}

		if err := ctx.Err(); err != nil {
			obs.Outcome = argocd.OutcomeTimedOut
			return obs, err
		}

		m.Sleep(interval)
	}
}

func (m *Monitor) sample(ctx context.Context, app string) argocd.HealthStatus {
	a, err := m.controller.GetApplication(ctx, app)
	if err != nil {
		m.logger.Warn().Caller().Err(err).Msgf("could not read health of %s", app)
		return argocd.HealthUnknown
	}

	return Classify(a.Health)
}
