package orchestrator

import (
	"context"
	"fmt"

	"github.com/porter-dev/argocd-deployer/pkg/alerter"
	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/porter-dev/argocd-deployer/pkg/metadata"
	"github.com/porter-dev/argocd-deployer/pkg/revision"
)

// flushOrder is the order metadata fields are written in during Finalizing
var flushOrder = []string{
	metadata.FieldStatus,
	metadata.FieldResult,
	metadata.FieldCurrentVersion,
	metadata.FieldPreviousVersion,
	metadata.FieldRollbackFrom,
	metadata.FieldRollbackTo,
	metadata.FieldRunID,
}

func finalStatus(result Result) string {
	switch result {
	case ResultSuccess:
		return StatusSucceeded
	case ResultAutoRollbackSuccess:
		return StatusRolledBack
	case ResultAwaitingManualRollback:
		return StatusAwaitingManualRollback
	default:
		return StatusFailed
	}
}

func (o *Orchestrator) finalizing(ctx context.Context, rec *Record) State {
	rec.FinishedAt = o.Now()
	rec.Status = finalStatus(rec.Result)

	rec.set(metadata.FieldStatus, rec.Status)
	rec.set(metadata.FieldResult, string(rec.Result))
	rec.set(metadata.FieldRunID, rec.RunID)

	if !rec.Succeeded() {
		o.collectLogs(ctx, rec)
	}

	o.flushMetadata(ctx, rec)

	_ = o.attempt(rec, "notify", func() error {
		return o.notifier.Notify(ctx, o.message(rec))
	})

	rec.metrics.ObserveRun(string(rec.Options.Mode), string(rec.Result), rec.FinishedAt.Sub(rec.StartedAt), rec.FinishedAt)

	if o.pusher != nil {
		_ = o.attempt(rec, "push metrics", func() error {
			return o.pusher.Push(ctx, rec.Options.App, rec.metrics)
		})
	}

	if rec.Succeeded() {
		rec.log.Info().Caller().Msgf("%s of %s finished with %s", rec.Options.Mode, rec.Options.App, rec.Result)
	} else {
		rec.log.Error().Caller().Err(rec.Err).Msgf("%s of %s finished with %s", rec.Options.Mode, rec.Options.App, rec.Result)
	}

	return StateTerminal
}

func (o *Orchestrator) flushMetadata(ctx context.Context, rec *Record) {
	for _, field := range flushOrder {
		value, ok := rec.Metadata[field]
		if !ok {
			continue
		}

		key := metadata.Key(argocd.ControllerName, rec.Options.App, field)

		_ = o.attempt(rec, "write "+field, func() error {
			return o.store.Set(ctx, key, value)
		})
	}
}

func (o *Orchestrator) collectLogs(ctx context.Context, rec *Record) {
	if !rec.Options.CollectLogs || o.collector == nil {
		return
	}

	_ = o.attempt(rec, "collect logs", func() error {
		path, err := o.collector.Collect(ctx, rec.Options.App, rec.RunID, rec.Options.LogLines)
		if err != nil {
			return err
		}

		rec.LogsPath = path

		return nil
	})

	if rec.LogsPath == "" || !rec.Options.UploadArtifacts {
		return
	}

	_ = o.attempt(rec, "upload artifacts", func() error {
		return o.collector.Upload(ctx, rec.LogsPath)
	})
}

func (o *Orchestrator) message(rec *Record) *alerter.Message {
	msg := &alerter.Message{
		Channel: rec.Options.SlackChannel,
		App:     rec.Options.App,
		RunID:   rec.RunID,
		Status:  rec.Status,
		Result:  string(rec.Result),
		Build:   o.build,
	}

	switch rec.Result {
	case ResultSuccess:
		msg.Severity = alerter.SeveritySuccess

		if rec.Options.Mode == ModeRollback {
			msg.Summary = "rolled back"
			msg.From, msg.To = rec.From.String(), rec.Target.String()
		} else {
			msg.Summary = "deployed"
			msg.From, msg.To = rec.PreviousStable.String(), revision.ShortHash(rec.SyncedRevision)
		}
	case ResultAutoRollbackSuccess:
		msg.Severity = alerter.SeverityNormal
		msg.Summary = "deployment failed, rolled back automatically"
		msg.From, msg.To = shortFrom(rec), rec.Target.String()
	case ResultAutoRollbackFailed:
		msg.Severity = alerter.SeverityCritical
		msg.Summary = "deployment failed and the automatic rollback failed too"
		msg.From, msg.To = shortFrom(rec), rec.Target.String()
	case ResultNoRollbackTarget:
		msg.Severity = alerter.SeverityCritical
		msg.Summary = "deployment failed with no revision to roll back to"
		msg.From = shortFrom(rec)
	case ResultAwaitingManualRollback:
		msg.Severity = alerter.SeverityNormal
		msg.Summary = "deployment failed, manual rollback decision required"
		msg.From, msg.To = shortFrom(rec), rec.PreviousStable.String()
	default:
		msg.Severity = alerter.SeverityCritical
		msg.Summary = fmt.Sprintf("%s failed", rec.Options.Mode)
		msg.From, msg.To = rec.From.String(), rec.Target.String()

		if rec.Options.Mode == ModeDeploy {
			msg.From, msg.To = rec.PreviousStable.String(), ""
		}
	}

	if rec.Err != nil {
		msg.Details = append(msg.Details, rec.Err.Error())
	}

	if rec.RollbackErr != nil {
		msg.Details = append(msg.Details, rec.RollbackErr.Error())
	}

	if rec.Health != nil && !rec.Health.Healthy() {
		msg.Details = append(msg.Details, fmt.Sprintf("health: %s after %d polls (%s)", rec.Health.Status, rec.Health.Polls, rec.Health.Elapsed))
	}

	if rec.LogsPath != "" {
		msg.Details = append(msg.Details, "logs: "+rec.LogsPath)
	}

	return msg
}

func shortFrom(rec *Record) string {
	if rec.SyncOutcome == argocd.OutcomeSuccess && rec.SyncedRevision != "" {
		return revision.ShortHash(rec.SyncedRevision)
	}

	return rec.PreviousStable.String()
}
