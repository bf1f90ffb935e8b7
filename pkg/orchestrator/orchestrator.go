//go:generate mockgen -source orchestrator.go -destination mocks/orchestrator.go

// Package orchestrator drives one deploy or rollback of an ArgoCD application
// from validation to a terminal state.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/porter-dev/argocd-deployer/internal/logger"
	"github.com/porter-dev/argocd-deployer/pkg/alerter"
	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/porter-dev/argocd-deployer/pkg/checkpoint"
	"github.com/porter-dev/argocd-deployer/pkg/health"
	"github.com/porter-dev/argocd-deployer/pkg/metadata"
	"github.com/porter-dev/argocd-deployer/pkg/metrics"
	"github.com/porter-dev/argocd-deployer/pkg/revision"
)

// LogCollector gathers application logs for failed runs
type LogCollector interface {
	Collect(ctx context.Context, app, runID string, lines int) (string, error)
	Upload(ctx context.Context, path string) error
}

// Config wires the collaborators of an Orchestrator. Only Controller and Store are required.
type Config struct {
	Controller argocd.Controller
	Store      metadata.Store
	Notifier   alerter.Notifier
	Checkpoint checkpoint.Checkpoint
	Collector  LogCollector
	Pusher     metrics.Pusher
	Monitor    *health.Monitor
	Build      alerter.BuildInfo
	Logger     *logger.Logger
}

type Orchestrator struct {
	controller argocd.Controller
	resolver   *revision.Resolver
	monitor    *health.Monitor
	store      metadata.Store
	notifier   alerter.Notifier
	checkpoint checkpoint.Checkpoint
	collector  LogCollector
	pusher     metrics.Pusher
	build      alerter.BuildInfo
	logger     *logger.Logger

	// Now and NewRunID are replaced in tests
	Now      func() time.Time
	NewRunID func() string
}

func New(conf Config) *Orchestrator {
	l := conf.Logger
	if l == nil {
		l = logger.NewNop()
	}

	o := &Orchestrator{
		controller: conf.Controller,
		resolver:   revision.NewResolver(conf.Controller, conf.Store),
		monitor:    conf.Monitor,
		store:      conf.Store,
		notifier:   conf.Notifier,
		checkpoint: conf.Checkpoint,
		collector:  conf.Collector,
		pusher:     conf.Pusher,
		build:      conf.Build,
		logger:     l,
		Now:        time.Now,
		NewRunID:   uuid.NewString,
	}

	if o.monitor == nil {
		o.monitor = health.NewMonitor(conf.Controller, l)
	}

	if o.notifier == nil {
		o.notifier = alerter.NewAlerter(l)
	}

	if o.checkpoint == nil {
		o.checkpoint = &checkpoint.Noop{Logger: l}
	}

	return o
}

type stateFunc func(o *Orchestrator, ctx context.Context, rec *Record) State

var states = map[State]stateFunc{
	StateValidating:             (*Orchestrator).validating,
	StateResolving:              (*Orchestrator).resolving,
	StateExecuting:              (*Orchestrator).executing,
	StateHealthChecking:         (*Orchestrator).healthChecking,
	StateSucceeded:              (*Orchestrator).succeeded,
	StateRollingBack:            (*Orchestrator).rollingBack,
	StateAwaitingManualDecision: (*Orchestrator).awaitingManualDecision,
	StateFinalizing:             (*Orchestrator).finalizing,
}

// Run executes one invocation. The returned record is never nil; the error is nil only
// when the run ended in success.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Record, error) {
	rec := &Record{
		RunID:          o.NewRunID(),
		Options:        opts,
		State:          StateValidating,
		PreviousStable: argocd.UnknownHistoryID,
		From:           argocd.UnknownHistoryID,
		Target:         argocd.UnknownHistoryID,
		Metadata:       map[string]string{},
		StartedAt:      o.Now(),
		metrics:        metrics.NewRun(),
	}

	rec.log = o.logger.ForRun(opts.App, rec.RunID)

	for rec.State != StateTerminal {
		next := states[rec.State](o, ctx, rec)

		rec.log.Debug().Caller().Msgf("%s -> %s", rec.State, next)
		rec.State = next
	}

	if rec.Succeeded() {
		return rec, nil
	}

	var confErr *ConfigError

	if errors.As(rec.Err, &confErr) {
		return rec, rec.Err
	}

	return rec, &RunError{App: rec.Options.App, Result: rec.Result, Err: rec.Err}
}

// attempt runs a best-effort call. A failure is logged and recorded on rec, and returned
// only so callers can discard it explicitly.
func (o *Orchestrator) attempt(rec *Record, action string, fn func() error) *AncillaryError {
	err := fn()
	if err == nil {
		return nil
	}

	aerr := &AncillaryError{Action: action, Err: err}

	rec.Ancillary = append(rec.Ancillary, aerr)
	rec.metrics.AncillaryFailures.WithLabelValues(action).Inc()
	rec.log.Warn().Caller().Err(err).Msgf("%s failed, continuing", action)

	return aerr
}

// writeStatus publishes a status immediately so other pipeline steps can follow progress
func (o *Orchestrator) writeStatus(ctx context.Context, rec *Record, status string) {
	rec.Status = status

	_ = o.attempt(rec, "write status", func() error {
		return o.store.Set(ctx, metadata.Key(argocd.ControllerName, rec.Options.App, metadata.FieldStatus), status)
	})
}

func (o *Orchestrator) setAutoSync(ctx context.Context, rec *Record, enabled bool) {
	action := "disable auto-sync"
	if enabled {
		action = "enable auto-sync"
	}

	_ = o.attempt(rec, action, func() error {
		res, err := o.controller.SetAutoSync(ctx, rec.Options.App, enabled)
		if err != nil {
			return err
		}

		if !res.Succeeded() {
			return &argocd.OperationError{
				Op:      action,
				App:     rec.Options.App,
				Outcome: res.Outcome,
				Err:     fmt.Errorf("controller reported %s", res.Outcome),
			}
		}

		return nil
	})
}
