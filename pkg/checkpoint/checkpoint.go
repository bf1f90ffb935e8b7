//go:generate mockgen -source checkpoint.go -destination mocks/checkpoint.go

// Package checkpoint pauses the surrounding pipeline until an operator picks the
// revision a follow-up invocation should roll back to.
package checkpoint

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/porter-dev/argocd-deployer/internal/logger"
	"github.com/porter-dev/argocd-deployer/pkg/command"
	"sigs.k8s.io/yaml"
)

const uploadTimeout = time.Minute

// Request describes the decision the operator has to make
type Request struct {
	App   string
	RunID string

	// From is the revision that failed, Candidate the suggested rollback target
	From      string
	Candidate string

	// Reason completes "Deployment of <app> from <from> ...", e.g. "failed to sync"
	Reason string
}

// TargetKey is the block field, and so the meta-data key, the operator's choice is stored under
func (r *Request) TargetKey() string {
	return "rollback-target-" + sanitize(r.App)
}

func (r *Request) blockKey() string {
	return "rollback-decision-" + sanitize(r.App)
}

// Checkpoint emits the external pause point
type Checkpoint interface {
	Request(ctx context.Context, req *Request) error
}

// Noop only logs, for pipelines that have no way to pause
type Noop struct {
	Logger *logger.Logger
}

func (n *Noop) Request(ctx context.Context, req *Request) error {
	n.Logger.Warn().Caller().Msgf(
		"%s needs a manual rollback decision (%s) from %s, suggested target is %s",
		req.App, req.Reason, req.From, req.Candidate,
	)

	return nil
}

// Buildkite uploads a block step followed by a rollback step that runs once the block is released
type Buildkite struct {
	runner command.Runner
	agent  string

	// RollbackCommand is the binary the follow-up step invokes
	RollbackCommand string
}

func NewBuildkite(runner command.Runner, agentBinary, rollbackCommand string) *Buildkite {
	if agentBinary == "" {
		agentBinary = "buildkite-agent"
	}

	if rollbackCommand == "" {
		rollbackCommand = "argocd-deployer"
	}

	return &Buildkite{
		runner:          runner,
		agent:           agentBinary,
		RollbackCommand: rollbackCommand,
	}
}

type pipeline struct {
	Steps []interface{} `json:"steps"`
}

type blockField struct {
	Text     string `json:"text"`
	Key      string `json:"key"`
	Hint     string `json:"hint,omitempty"`
	Default  string `json:"default,omitempty"`
	Required bool   `json:"required"`
}

// Both steps allow dependency failure: the step that uploads them exits non-zero
// while the decision is pending.
type blockStep struct {
	Block                  string       `json:"block"`
	Key                    string       `json:"key"`
	Prompt                 string       `json:"prompt,omitempty"`
	Fields                 []blockField `json:"fields"`
	AllowDependencyFailure bool         `json:"allow_dependency_failure"`
}

type commandStep struct {
	Label                  string            `json:"label"`
	Command                string            `json:"command"`
	DependsOn              string            `json:"depends_on"`
	AllowDependencyFailure bool              `json:"allow_dependency_failure"`
	Env                    map[string]string `json:"env,omitempty"`
}

// Pipeline renders the steps uploaded for req
func (b *Buildkite) Pipeline(req *Request) ([]byte, error) {
	candidate := req.Candidate
	if candidate == "unknown" {
		candidate = ""
	}

	reason := req.Reason
	if reason == "" {
		reason = "failed"
	}

	p := pipeline{
		Steps: []interface{}{
			blockStep{
				Block:  fmt.Sprintf(":rewind: Roll back %s?", req.App),
				Key:    req.blockKey(),
				Prompt: fmt.Sprintf("Deployment of %s from %s %s.", req.App, req.From, reason),
				Fields: []blockField{
					{
						Text:     "Target revision",
						Key:      req.TargetKey(),
						Hint:     "History ID or commit hash, or \"previous\"",
						Default:  candidate,
						Required: true,
					},
				},
				AllowDependencyFailure: true,
			},
			commandStep{
				Label: fmt.Sprintf(":rewind: rollback %s", req.App),
				Command: fmt.Sprintf(
					"%s rollback --app %s --rollback-mode manual --target-revision \"$$(%s meta-data get %s)\"",
					b.RollbackCommand, shellQuote(req.App), b.agent, req.TargetKey(),
				),
				DependsOn:              req.blockKey(),
				AllowDependencyFailure: true,
				Env: map[string]string{
					"DEPLOYER_PARENT_RUN_ID": req.RunID,
				},
			},
		},
	}

	return yaml.Marshal(p)
}

func (b *Buildkite) Request(ctx context.Context, req *Request) error {
	data, err := b.Pipeline(req)
	if err != nil {
		return fmt.Errorf("could not render checkpoint pipeline: %w", err)
	}

	_, err = b.runner.Run(ctx, command.Command{
		Name:    b.agent,
		Args:    []string{"pipeline", "upload"},
		Stdin:   bytes.NewReader(data),
		Timeout: uploadTimeout,
	})
	if err != nil {
		return fmt.Errorf("could not upload checkpoint pipeline: %w", err)
	}

	return nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, s)
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9._/=-]+$`)

// shellQuote single-quotes s for the step's shell. Dollars are doubled so Buildkite
// does not interpolate them at upload time.
func shellQuote(s string) string {
	if shellSafe.MatchString(s) {
		return s
	}

	s = strings.ReplaceAll(s, "'", `'\''`)
	s = strings.ReplaceAll(s, "$", "$$")

	return "'" + s + "'"
}
