package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/porter-dev/argocd-deployer/pkg/revision"
)

// ConfigError reports invalid options. Nothing has been done when it is returned.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// AncillaryError is a failed best-effort call. It is logged and recorded, never propagated.
type AncillaryError struct {
	Action string
	Err    error
}

func (e *AncillaryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *AncillaryError) Unwrap() error {
	return e.Err
}

// RunError is returned by Run when the invocation did not end in success
type RunError struct {
	App    string
	Result Result
	Err    error
}

func (e *RunError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("run of %s ended with %s", e.App, e.Result)
	}

	return fmt.Sprintf("run of %s ended with %s: %v", e.App, e.Result, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Exit codes of the CLI
const (
	ExitSuccess          = 0
	ExitFailure          = 1
	ExitConfigError      = 2
	ExitResolutionError  = 3
	ExitAwaitingDecision = 4
)

// ExitCode maps the error returned by Run onto a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		confErr *ConfigError
		runErr  *RunError
		resErr  *revision.ResolutionError
	)

	switch {
	case errors.As(err, &confErr):
		return ExitConfigError
	case errors.As(err, &runErr) && runErr.Result == ResultAwaitingManualRollback:
		return ExitAwaitingDecision
	case errors.As(err, &resErr):
		return ExitResolutionError
	default:
		return ExitFailure
	}
}
