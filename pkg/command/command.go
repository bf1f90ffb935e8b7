package command

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ErrTimedOut is returned when a command is killed because its timeout elapsed
var ErrTimedOut = errors.New("command timed out")

// Command describes a single invocation of an external binary
type Command struct {
	Name    string
	Args    []string
	Stdin   io.Reader
	Env     []string
	Timeout time.Duration
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds everything a finished command produced
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	TimedOut bool
}

// Lines returns stdout followed by stderr, split into non-empty lines
func (r *Result) Lines() []string {
	if r == nil {
		return nil
	}

	lines := make([]string, 0)

	for _, out := range [][]byte{r.Stdout, r.Stderr} {
		scanner := bufio.NewScanner(bytes.NewReader(out))

		for scanner.Scan() {
			if line := strings.TrimRight(scanner.Text(), " \t"); line != "" {
				lines = append(lines, line)
			}
		}
	}

	return lines
}

// ExitError is returned when a command ran but exited non-zero
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}

	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// Runner abstracts process execution so CLI-backed collaborators can be tested
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands on the local machine
type ExecRunner struct {
	// Env is appended to the environment of every command
	Env []string
}

// NewExecRunner returns a Runner backed by os/exec
func NewExecRunner(env ...string) *ExecRunner {
	return &ExecRunner{Env: env}
}

func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)

	var stdout, stderr bytes.Buffer

	c.Stdout = &stdout
	c.Stderr = &stderr
	c.Stdin = cmd.Stdin

	if len(r.Env) > 0 || len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), r.Env...)
		c.Env = append(c.Env, cmd.Env...)
	}

	err := c.Run()

	res := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1

		return res, fmt.Errorf("%s: %w", cmd, ErrTimedOut)
	}

	if err != nil {
		var exitErr *exec.ExitError

		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()

			return res, &ExitError{
				Command:  cmd.String(),
				ExitCode: res.ExitCode,
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}

		return res, fmt.Errorf("could not run %s: %w", cmd.Name, err)
	}

	return res, nil
}
