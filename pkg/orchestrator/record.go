package orchestrator

import (
	"time"

	"github.com/porter-dev/argocd-deployer/internal/logger"
	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/porter-dev/argocd-deployer/pkg/health"
	"github.com/porter-dev/argocd-deployer/pkg/metrics"
)

type State string

const (
	StateValidating             State = "Validating"
	StateResolving              State = "Resolving"
	StateExecuting              State = "Executing"
	StateHealthChecking         State = "HealthChecking"
	StateSucceeded              State = "Succeeded"
	StateRollingBack            State = "RollingBack"
	StateAwaitingManualDecision State = "AwaitingManualDecision"
	StateFinalizing             State = "Finalizing"
	StateTerminal               State = "Terminal"
)

type Result string

const (
	ResultSuccess                Result = "success"
	ResultFailed                 Result = "failed"
	ResultAutoRollbackSuccess    Result = "auto_rollback_success"
	ResultAutoRollbackFailed     Result = "auto_rollback_failed"
	ResultNoRollbackTarget       Result = "deployment_failed_no_rollback_target"
	ResultAwaitingManualRollback Result = "awaiting_manual_rollback"
)

// Status values written to the status metadata field
const (
	StatusDeploying              = "deploying"
	StatusRollingBack            = "rolling_back"
	StatusAwaitingManualRollback = "awaiting_manual_rollback"
	StatusSucceeded              = "succeeded"
	StatusRolledBack             = "rolled_back"
	StatusFailed                 = "failed"
)

// Record is the working state of one invocation. Only the state functions of
// the Orchestrator mutate it.
type Record struct {
	RunID   string
	Options Options
	State   State

	// PreviousStable is captured before any mutating call
	PreviousStable argocd.HistoryID

	// From is what a rollback moves away from, Target what it moves to
	From   argocd.HistoryID
	Target argocd.HistoryID

	// SyncedRevision is the source revision the sync produced
	SyncedRevision  string
	SyncOutcome     argocd.Outcome
	RollbackOutcome argocd.Outcome
	Health          *health.Observation
	RollbackHealth  *health.Observation

	Result Result
	Status string

	// Err is the failure that drove the run off the success path
	Err error
	// RollbackErr is set when the automatic rollback that followed Err failed as well
	RollbackErr error
	Ancillary   []*AncillaryError

	// Metadata holds the fields flushed during Finalizing
	Metadata map[string]string
	LogsPath string

	StartedAt  time.Time
	FinishedAt time.Time

	log     *logger.Logger
	metrics *metrics.Run
}

// Succeeded reports whether the run ended in terminal success
func (r *Record) Succeeded() bool {
	return r.Result == ResultSuccess
}

// Metrics returns the metrics recorded for this run
func (r *Record) Metrics() *metrics.Run {
	return r.metrics
}

func (r *Record) set(field, value string) {
	r.Metadata[field] = value
}

// rollbackFrom is the revision a manual decision moves away from
func (r *Record) rollbackFrom() string {
	if r.SyncOutcome == argocd.OutcomeSuccess && r.SyncedRevision != "" {
		return r.SyncedRevision
	}

	return r.PreviousStable.String()
}
