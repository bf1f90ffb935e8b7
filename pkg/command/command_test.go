package command_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/porter-dev/argocd-deployer/pkg/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Run(t *testing.T) {
	r := command.NewExecRunner()

	res, err := r.Run(context.Background(), command.Command{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err 1>&2"},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{"out", "err"}, res.Lines())
}

func TestExecRunner_RunStdin(t *testing.T) {
	r := command.NewExecRunner()

	res, err := r.Run(context.Background(), command.Command{
		Name:  "cat",
		Stdin: strings.NewReader("steps: []\n"),
	})

	require.NoError(t, err)
	assert.Equal(t, "steps: []\n", string(res.Stdout))
}

func TestExecRunner_RunExitCode(t *testing.T) {
	r := command.NewExecRunner()

	res, err := r.Run(context.Background(), command.Command{
		Name: "sh",
		Args: []string{"-c", "echo boom 1>&2; exit 3"},
	})

	var exitErr *command.ExitError

	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Equal(t, "boom", exitErr.Stderr)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecRunner_RunTimeout(t *testing.T) {
	r := command.NewExecRunner()

	res, err := r.Run(context.Background(), command.Command{
		Name:    "sleep",
		Args:    []string{"5"},
		Timeout: 50 * time.Millisecond,
	})

	assert.ErrorIs(t, err, command.ErrTimedOut)
	assert.True(t, res.TimedOut)
}

func TestExecRunner_RunEnv(t *testing.T) {
	r := command.NewExecRunner("ARGOCD_DEPLOYER_TEST=from-runner")

	res, err := r.Run(context.Background(), command.Command{
		Name: "sh",
		Args: []string{"-c", "echo $ARGOCD_DEPLOYER_TEST $EXTRA"},
		Env:  []string{"EXTRA=from-command"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"from-runner from-command"}, res.Lines())
}
