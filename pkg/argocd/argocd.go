//go:generate mockgen -source argocd.go -destination mocks/argocd.go
package argocd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ControllerName is the controller segment of every metadata key written for ArgoCD applications
const ControllerName = "argocd"

// HistoryID is the identifier ArgoCD assigns to each entry of an application's deployment history
type HistoryID int64

// UnknownHistoryID marks a history identifier that could not be determined
const UnknownHistoryID HistoryID = -1

func (id HistoryID) String() string {
	if id < 0 {
		return "unknown"
	}

	return strconv.FormatInt(int64(id), 10)
}

// Known reports whether the identifier refers to an actual history entry
func (id HistoryID) Known() bool {
	return id >= 0
}

// Outcome classifies the result of a mutating controller call or a health poll loop
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeTimedOut Outcome = "timed_out"
)

// OperationResult is returned by every mutating controller call
type OperationResult struct {
	Outcome Outcome

	// Output holds the raw lines produced by the controller while executing the call
	Output []string
}

// Succeeded is nil-safe
func (r *OperationResult) Succeeded() bool {
	return r != nil && r.Outcome == OutcomeSuccess
}

// ErrAutoSyncEnabled is returned when the controller refuses a rollback because auto-sync is on
var ErrAutoSyncEnabled = errors.New("must disable auto-sync before rolling back")

// OperationError describes a failed or timed out controller operation
type OperationError struct {
	Op      string
	App     string
	Outcome Outcome
	Err     error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s of application %s %s: %v", e.Op, e.App, e.Outcome, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Controller abstracts the ArgoCD operations the orchestrator depends on.
// Calls block until they finish or their timeout elapses and never retry.
type Controller interface {
	GetApplication(ctx context.Context, app string) (*Application, error)
	Sync(ctx context.Context, app string, timeout time.Duration) (*OperationResult, error)
	Rollback(ctx context.Context, app string, id HistoryID, timeout time.Duration) (*OperationResult, error)
	History(ctx context.Context, app string) ([]HistoryEntry, error)
	SetAutoSync(ctx context.Context, app string, enabled bool) (*OperationResult, error)
	WaitForHealth(ctx context.Context, app string, timeout time.Duration) (*OperationResult, error)
}

// LogSource is implemented by controllers that can return recent application logs
type LogSource interface {
	Logs(ctx context.Context, app string, tail int) ([]string, error)
}
