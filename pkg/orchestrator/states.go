package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/porter-dev/argocd-deployer/pkg/checkpoint"
	"github.com/porter-dev/argocd-deployer/pkg/metadata"
	"github.com/porter-dev/argocd-deployer/pkg/revision"
)

func (o *Orchestrator) validating(ctx context.Context, rec *Record) State {
	if err := rec.Options.Validate(); err != nil {
		rec.Err = err
		rec.Result = ResultFailed
		rec.log.Error().Caller().Err(err).Msg("refusing to run")

		return StateTerminal
	}

	rec.log = o.logger.ForRun(rec.Options.App, rec.RunID)
	rec.log.Info().Caller().Msgf("starting %s of %s, rollback mode %s", rec.Options.Mode, rec.Options.App, rec.Options.RollbackMode)

	return StateResolving
}

func (o *Orchestrator) resolving(ctx context.Context, rec *Record) State {
	app := rec.Options.App

	current, err := o.resolver.CurrentStable(ctx, app)
	if err != nil {
		rec.log.Warn().Caller().Err(err).Msgf("could not determine the stable revision of %s", app)
	}

	rec.PreviousStable = current

	if rec.Options.Mode == ModeDeploy {
		if !current.Known() {
			rec.log.Warn().Caller().Msg("no stable revision to fall back to, automatic rollback is disabled for this run")
		}

		return StateExecuting
	}

	rec.From = current

	target, err := o.resolveTarget(ctx, rec)
	if err != nil {
		rec.Err = err
		rec.Result = ResultFailed
		rec.log.Error().Caller().Err(err).Msgf("could not resolve rollback target %q", rec.Options.TargetRevision)

		return StateFinalizing
	}

	rec.Target = target
	rec.log.Info().Caller().Msgf("resolved %q to history ID %s", rec.Options.TargetRevision, target)

	return StateExecuting
}

func (o *Orchestrator) resolveTarget(ctx context.Context, rec *Record) (argocd.HistoryID, error) {
	if strings.EqualFold(rec.Options.TargetRevision, revision.PreviousToken) {
		return o.resolver.PreviousStable(ctx, rec.Options.App)
	}

	return o.resolver.Resolve(ctx, rec.Options.App, rec.Options.TargetRevision)
}

func (o *Orchestrator) executing(ctx context.Context, rec *Record) State {
	if rec.Options.Mode == ModeRollback {
		return o.executeRollback(ctx, rec)
	}

	app := rec.Options.App

	o.writeStatus(ctx, rec, StatusDeploying)

	res, err := o.controller.Sync(ctx, app, rec.Options.timeout())
	rec.SyncOutcome = outcomeOf(res, err)

	if rec.SyncOutcome != argocd.OutcomeSuccess {
		rec.Err = operationError("sync", app, res, err)
		rec.log.Error().Caller().Err(rec.Err).Msg("sync did not succeed, skipping health check")

		return o.failureBranch(rec)
	}

	rec.SyncedRevision = o.deployedRevision(ctx, rec, "")
	rec.log.Info().Caller().Msgf("synced %s to %s", app, revision.ShortHash(rec.SyncedRevision))

	return StateHealthChecking
}

func (o *Orchestrator) executeRollback(ctx context.Context, rec *Record) State {
	app := rec.Options.App

	o.writeStatus(ctx, rec, StatusRollingBack)

	// stays disabled afterwards, the controller would otherwise sync away from the chosen revision
	o.setAutoSync(ctx, rec, false)

	res, err := o.controller.Rollback(ctx, app, rec.Target, rec.Options.timeout())
	rec.RollbackOutcome = outcomeOf(res, err)
	rec.metrics.RollbacksTotal.WithLabelValues("operator", string(rec.RollbackOutcome)).Inc()

	if rec.RollbackOutcome != argocd.OutcomeSuccess {
		rec.Err = operationError("rollback", app, res, err)
		rec.Result = ResultFailed
		rec.log.Error().Caller().Err(rec.Err).Msgf("rollback to %s failed", rec.Target)

		return StateFinalizing
	}

	rec.SyncedRevision = o.deployedRevision(ctx, rec, "")
	rec.log.Info().Caller().Msgf("rolled back %s to %s, auto-sync stays disabled", app, rec.Target)

	return StateSucceeded
}

func (o *Orchestrator) healthChecking(ctx context.Context, rec *Record) State {
	app := rec.Options.App
	failFast := rec.Options.RollbackMode == RollbackManual

	obs, err := o.monitor.Observe(ctx, app, rec.Options.healthCheckInterval(), rec.Options.healthCheckTimeout(), failFast)
	rec.Health = obs
	rec.metrics.ObserveHealth(obs.Polls, obs.Elapsed)

	if err == nil && obs.Healthy() {
		rec.log.Info().Caller().Msgf("%s is healthy after %s", app, obs.Elapsed)
		return StateSucceeded
	}

	if err == nil {
		err = fmt.Errorf("last reported health %s after %d polls", obs.Status, obs.Polls)
	}

	rec.Err = &argocd.OperationError{Op: "health check", App: app, Outcome: obs.Outcome, Err: err}
	rec.log.Error().Caller().Err(rec.Err).Msg("deployment is not healthy")

	return o.failureBranch(rec)
}

func (o *Orchestrator) failureBranch(rec *Record) State {
	if rec.Options.RollbackMode == RollbackManual {
		return StateAwaitingManualDecision
	}

	if !rec.PreviousStable.Known() {
		rec.Result = ResultNoRollbackTarget
		return StateFinalizing
	}

	return StateRollingBack
}

func (o *Orchestrator) succeeded(ctx context.Context, rec *Record) State {
	rec.Result = ResultSuccess

	switch rec.Options.Mode {
	case ModeDeploy:
		rec.set(metadata.FieldCurrentVersion, rec.SyncedRevision)
		rec.set(metadata.FieldPreviousVersion, rec.PreviousStable.String())
	case ModeRollback:
		rec.set(metadata.FieldCurrentVersion, orDefault(rec.SyncedRevision, rec.Target.String()))
		rec.set(metadata.FieldRollbackFrom, rec.From.String())
		rec.set(metadata.FieldRollbackTo, rec.Target.String())
	}

	return StateFinalizing
}

// rollingBack reverts a failed deploy to the stable revision captured before it
func (o *Orchestrator) rollingBack(ctx context.Context, rec *Record) State {
	app := rec.Options.App
	rec.Target = rec.PreviousStable

	o.writeStatus(ctx, rec, StatusRollingBack)
	o.setAutoSync(ctx, rec, false)

	res, err := o.controller.Rollback(ctx, app, rec.Target, rec.Options.timeout())
	rec.RollbackOutcome = outcomeOf(res, err)

	if rec.RollbackOutcome == argocd.OutcomeSuccess {
		obs, herr := o.monitor.Observe(ctx, app, rec.Options.healthCheckInterval(), rec.Options.healthCheckTimeout(), false)
		rec.RollbackHealth = obs

		if herr != nil || !obs.Healthy() {
			rec.RollbackOutcome = obs.Outcome
			rec.RollbackErr = &argocd.OperationError{
				Op:      "health check after rollback",
				App:     app,
				Outcome: obs.Outcome,
				Err:     orError(herr, fmt.Errorf("last reported health %s", obs.Status)),
			}
		}
	} else {
		rec.RollbackErr = operationError("rollback", app, res, err)
	}

	// always attempted so a failed rollback does not leave the application unmanaged
	o.setAutoSync(ctx, rec, true)

	rec.metrics.RollbacksTotal.WithLabelValues("auto", string(rec.RollbackOutcome)).Inc()
	rec.set(metadata.FieldRollbackFrom, rec.rollbackFrom())
	rec.set(metadata.FieldRollbackTo, rec.Target.String())

	if rec.RollbackErr != nil {
		rec.Result = ResultAutoRollbackFailed
		rec.log.Error().Caller().Err(rec.RollbackErr).Msgf("automatic rollback to %s failed", rec.Target)

		return StateFinalizing
	}

	rec.Result = ResultAutoRollbackSuccess
	rec.set(metadata.FieldCurrentVersion, o.deployedRevision(ctx, rec, rec.Target.String()))
	rec.log.Info().Caller().Msgf("rolled %s back to %s", app, rec.Target)

	return StateFinalizing
}

func (o *Orchestrator) awaitingManualDecision(ctx context.Context, rec *Record) State {
	rec.Result = ResultAwaitingManualRollback

	o.writeStatus(ctx, rec, StatusAwaitingManualRollback)

	rec.set(metadata.FieldRollbackFrom, rec.rollbackFrom())
	rec.set(metadata.FieldRollbackTo, rec.PreviousStable.String())

	// lets the follow-up step resolve "previous" without walking the history
	if rec.PreviousStable.Known() {
		rec.set(metadata.FieldPreviousVersion, rec.PreviousStable.String())
	}

	_ = o.attempt(rec, "request manual decision", func() error {
		return o.checkpoint.Request(ctx, &checkpoint.Request{
			App:       rec.Options.App,
			RunID:     rec.RunID,
			From:      rec.rollbackFrom(),
			Candidate: rec.PreviousStable.String(),
			Reason:    decisionReason(rec),
		})
	})

	return StateFinalizing
}

// decisionReason says which step left the deployment in need of a decision
func decisionReason(rec *Record) string {
	if rec.SyncOutcome != argocd.OutcomeSuccess {
		return fmt.Sprintf("failed to sync (%s)", rec.SyncOutcome)
	}

	if rec.Health != nil {
		return fmt.Sprintf("reported %s health after %d polls", rec.Health.Status, rec.Health.Polls)
	}

	return "failed"
}

// deployedRevision reads back the revision the application is synced to now
func (o *Orchestrator) deployedRevision(ctx context.Context, rec *Record, fallback string) string {
	a, err := o.controller.GetApplication(ctx, rec.Options.App)
	if err != nil || a.SyncRevision == "" {
		rec.log.Warn().Caller().Err(err).Msg("could not read the synced revision back")
		return fallback
	}

	return a.SyncRevision
}

func outcomeOf(res *argocd.OperationResult, err error) argocd.Outcome {
	if res != nil && res.Outcome != "" {
		if err != nil && res.Outcome == argocd.OutcomeSuccess {
			return argocd.OutcomeFailed
		}

		return res.Outcome
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return argocd.OutcomeTimedOut
	}

	if err == nil {
		return argocd.OutcomeSuccess
	}

	return argocd.OutcomeFailed
}

func operationError(op, app string, res *argocd.OperationResult, err error) error {
	var opErr *argocd.OperationError

	if errors.As(err, &opErr) {
		return opErr
	}

	outcome := outcomeOf(res, err)

	return &argocd.OperationError{
		Op:      op,
		App:     app,
		Outcome: outcome,
		Err:     orError(err, fmt.Errorf("controller reported %s", outcome)),
	}
}

func orError(err, fallback error) error {
	if err != nil {
		return err
	}

	return fallback
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}
