// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/porter-dev/argocd-deployer/pkg/command"
)

// Response is what the fake returns for a matching command
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Err      error
}

type rule struct {
	prefix    string
	responses []Response
}

// Call is a recorded invocation
type Call struct {
	Command command.Command
	Stdin   string
}

// Line returns the command line of the call, name and args joined by spaces
func (c Call) Line() string {
	return c.Command.String()
}

// Runner matches commands by the prefix of their joined command line.
// Responses registered for the same prefix are consumed in order, the last one repeats.
type Runner struct {
	mu    sync.Mutex
	rules []*rule
	Calls []Call
}

// NewRunner returns an empty scripted runner
func NewRunner() *Runner {
	return &Runner{}
}

// On registers responses for commands whose command line starts with prefix
func (r *Runner) On(prefix string, responses ...Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, &rule{prefix: prefix, responses: responses})

	return r
}

// CallsMatching returns recorded calls whose command line starts with prefix
func (r *Runner) CallsMatching(prefix string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]Call, 0)

	for _, c := range r.Calls {
		if strings.HasPrefix(c.Line(), prefix) {
			res = append(res, c)
		}
	}

	return res
}

func (r *Runner) Run(ctx context.Context, cmd command.Command) (*command.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := Call{Command: cmd}

	if cmd.Stdin != nil {
		b, _ := io.ReadAll(cmd.Stdin)
		call.Stdin = string(b)
	}

	r.Calls = append(r.Calls, call)

	line := cmd.String()

	// longest prefix wins so specific rules can override general ones
	var match *rule

	for _, ru := range r.rules {
		if strings.HasPrefix(line, ru.prefix) && (match == nil || len(ru.prefix) > len(match.prefix)) {
			match = ru
		}
	}

	if match == nil || len(match.responses) == 0 {
		return &command.Result{}, nil
	}

	resp := match.responses[0]

	if len(match.responses) > 1 {
		match.responses = match.responses[1:]
	}

	res := &command.Result{
		Stdout:   []byte(resp.Stdout),
		Stderr:   []byte(resp.Stderr),
		ExitCode: resp.ExitCode,
		TimedOut: resp.TimedOut,
	}

	switch {
	case resp.Err != nil:
		return res, resp.Err
	case resp.TimedOut:
		return res, command.ErrTimedOut
	case resp.ExitCode != 0:
		return res, &command.ExitError{Command: line, ExitCode: resp.ExitCode, Stderr: resp.Stderr}
	}

	return res, nil
}
