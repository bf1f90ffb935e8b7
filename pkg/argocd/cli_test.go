package argocd_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/porter-dev/argocd-deployer/pkg/command/commandtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCLI(runner *commandtest.Runner) *argocd.CLIClient {
	return argocd.NewCLIClient(runner, argocd.CLIConfig{
		Server:    "argocd.example.com",
		AuthToken: "secret",
		GRPCWeb:   true,
	})
}

func TestCLIClient_GetApplication(t *testing.T) {
	runner := commandtest.NewRunner().On("argocd app get guestbook", commandtest.Response{Stdout: appJSON})

	app, err := newCLI(runner).GetApplication(context.Background(), "guestbook")
	require.NoError(t, err)
	assert.Equal(t, "guestbook", app.Name)

	calls := runner.CallsMatching("argocd app get")
	require.Len(t, calls, 1)
	assert.Equal(t, "argocd app get guestbook -o json --server argocd.example.com --grpc-web", calls[0].Line())
	assert.Equal(t, []string{"ARGOCD_AUTH_TOKEN=secret"}, calls[0].Command.Env)
}

func TestCLIClient_GetApplicationRequiresName(t *testing.T) {
	_, err := newCLI(commandtest.NewRunner()).GetApplication(context.Background(), "")
	assert.Error(t, err)
}

func TestCLIClient_Sync(t *testing.T) {
	tests := []struct {
		name     string
		response commandtest.Response
		outcome  argocd.Outcome
		wantErr  bool
	}{
		{
			name:     "sync succeeds",
			response: commandtest.Response{Stdout: "Operation: Sync\nPhase: Succeeded\n"},
			outcome:  argocd.OutcomeSuccess,
		},
		{
			name:     "sync fails",
			response: commandtest.Response{Stderr: "one or more objects failed to apply", ExitCode: 20},
			outcome:  argocd.OutcomeFailed,
			wantErr:  true,
		},
		{
			name:     "controller reports timeout",
			response: commandtest.Response{Stderr: "rpc error: code = DeadlineExceeded desc = timed out waiting for app", ExitCode: 1},
			outcome:  argocd.OutcomeTimedOut,
			wantErr:  true,
		},
		{
			name:     "process killed after timeout",
			response: commandtest.Response{TimedOut: true},
			outcome:  argocd.OutcomeTimedOut,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := commandtest.NewRunner().On("argocd app sync", tt.response)

			res, err := newCLI(runner).Sync(context.Background(), "guestbook", 5*time.Minute)
			assert.Equal(t, tt.outcome, res.Outcome)

			if tt.wantErr {
				var opErr *argocd.OperationError
				require.True(t, errors.As(err, &opErr))
				assert.Equal(t, tt.outcome, opErr.Outcome)
				assert.Equal(t, "sync", opErr.Op)
			} else {
				assert.NoError(t, err)
			}

			calls := runner.CallsMatching("argocd app sync guestbook --timeout 300")
			require.Len(t, calls, 1)
			assert.Equal(t, 330*time.Second, calls[0].Command.Timeout)
		})
	}
}

func TestCLIClient_Rollback(t *testing.T) {
	runner := commandtest.NewRunner().On("argocd app rollback guestbook 42", commandtest.Response{})

	res, err := newCLI(runner).Rollback(context.Background(), "guestbook", 42, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.Len(t, runner.CallsMatching("argocd app rollback guestbook 42 --timeout 60"), 1)
}

func TestCLIClient_RollbackAutoSyncEnabled(t *testing.T) {
	runner := commandtest.NewRunner().On("argocd app rollback", commandtest.Response{
		Stderr:   "FATA[0000] rpc error: code = FailedPrecondition desc = rollback cannot be initiated when auto-sync is enabled",
		ExitCode: 20,
	})

	res, err := newCLI(runner).Rollback(context.Background(), "guestbook", 3, time.Minute)
	assert.Equal(t, argocd.OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, err, argocd.ErrAutoSyncEnabled)
}

func TestCLIClient_RollbackUnknownTarget(t *testing.T) {
	runner := commandtest.NewRunner()

	res, err := newCLI(runner).Rollback(context.Background(), "guestbook", argocd.UnknownHistoryID, time.Minute)
	assert.Error(t, err)
	assert.Equal(t, argocd.OutcomeFailed, res.Outcome)
	assert.Empty(t, runner.Calls)
}

func TestCLIClient_History(t *testing.T) {
	runner := commandtest.NewRunner().On("argocd app history guestbook", commandtest.Response{Stdout: `ID  DATE                           REVISION
2   2024-03-02 10:00:00 +0000 UTC  main (bbbbbbb)
1   2024-03-01 10:00:00 +0000 UTC  main (aaaaaaa)
`})

	entries, err := newCLI(runner).History(context.Background(), "guestbook")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, argocd.HistoryID(1), entries[0].ID)
	assert.Equal(t, "bbbbbbb", entries[1].Revision)
}

func TestCLIClient_SetAutoSync(t *testing.T) {
	runner := commandtest.NewRunner()
	cli := newCLI(runner)

	_, err := cli.SetAutoSync(context.Background(), "guestbook", false)
	require.NoError(t, err)
	_, err = cli.SetAutoSync(context.Background(), "guestbook", true)
	require.NoError(t, err)

	assert.Len(t, runner.CallsMatching("argocd app set guestbook --sync-policy none"), 1)
	assert.Len(t, runner.CallsMatching("argocd app set guestbook --sync-policy automated"), 1)
}

func TestCLIClient_WaitForHealth(t *testing.T) {
	runner := commandtest.NewRunner().On("argocd app wait guestbook --health", commandtest.Response{TimedOut: true})

	res, err := newCLI(runner).WaitForHealth(context.Background(), "guestbook", 2*time.Minute)
	assert.Error(t, err)
	assert.Equal(t, argocd.OutcomeTimedOut, res.Outcome)
}

func TestCLIClient_Logs(t *testing.T) {
	runner := commandtest.NewRunner().On("argocd app logs guestbook --tail 200", commandtest.Response{Stdout: "line one\nline two\n"})

	lines, err := newCLI(runner).Logs(context.Background(), "guestbook", 200)
	require.NoError(t, err)
	assert.Equal(t, []string{"line one", "line two"}, lines)
}
