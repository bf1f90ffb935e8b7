package checkpoint

import (
	"context"
	"testing"

	"github.com/porter-dev/argocd-deployer/internal/logger"
	"github.com/porter-dev/argocd-deployer/pkg/command/commandtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestBuildkite_Request(t *testing.T) {
	runner := commandtest.NewRunner()
	b := NewBuildkite(runner, "", "")

	req := &Request{App: "Guest.Book", RunID: "run-1", From: "12", Candidate: "11", Reason: "failed to sync"}

	require.NoError(t, b.Request(context.Background(), req))

	calls := runner.CallsMatching("buildkite-agent pipeline upload")
	require.Len(t, calls, 1)

	var uploaded pipeline
	require.NoError(t, yaml.Unmarshal([]byte(calls[0].Stdin), &uploaded))
	require.Len(t, uploaded.Steps, 2)

	block := uploaded.Steps[0].(map[string]interface{})
	assert.Equal(t, "rollback-decision-guest-book", block["key"])
	assert.Equal(t, "Deployment of Guest.Book from 12 failed to sync.", block["prompt"])
	assert.Equal(t, true, block["allow_dependency_failure"])

	fields := block["fields"].([]interface{})
	field := fields[0].(map[string]interface{})
	assert.Equal(t, "rollback-target-guest-book", field["key"])
	assert.Equal(t, "11", field["default"])

	step := uploaded.Steps[1].(map[string]interface{})
	assert.Equal(t, "rollback-decision-guest-book", step["depends_on"])
	assert.Equal(t, true, step["allow_dependency_failure"])
	assert.Equal(t,
		`argocd-deployer rollback --app Guest.Book --rollback-mode manual --target-revision "$$(buildkite-agent meta-data get rollback-target-guest-book)"`,
		step["command"],
	)
}

func TestBuildkite_UnknownCandidateHasNoDefault(t *testing.T) {
	b := NewBuildkite(commandtest.NewRunner(), "", "")

	data, err := b.Pipeline(&Request{App: "guestbook", From: "12", Candidate: "unknown"})
	require.NoError(t, err)

	assert.NotContains(t, string(data), "default:")
}

func TestBuildkite_UploadFailure(t *testing.T) {
	runner := commandtest.NewRunner().On("buildkite-agent pipeline upload", commandtest.Response{ExitCode: 1, Stderr: "forbidden"})

	err := NewBuildkite(runner, "", "").Request(context.Background(), &Request{App: "guestbook"})
	assert.ErrorContains(t, err, "could not upload checkpoint pipeline")
}

func TestNoop(t *testing.T) {
	n := &Noop{Logger: logger.NewNop()}

	assert.NoError(t, n.Request(context.Background(), &Request{App: "guestbook"}))
}

func TestBuildkite_QuotesAppInCommand(t *testing.T) {
	b := NewBuildkite(commandtest.NewRunner(), "", "")

	data, err := b.Pipeline(&Request{App: "guestbook;id $HOME 'x'", From: "12", Candidate: "11"})
	require.NoError(t, err)

	var p pipeline
	require.NoError(t, yaml.Unmarshal(data, &p))

	step := p.Steps[1].(map[string]interface{})
	assert.Contains(t, step["command"], `--app 'guestbook;id $$HOME '\''x'\''' --rollback-mode`)
}

func TestBuildkite_DefaultReason(t *testing.T) {
	data, err := NewBuildkite(commandtest.NewRunner(), "", "").Pipeline(&Request{App: "guestbook", From: "12"})
	require.NoError(t, err)

	assert.Contains(t, string(data), "Deployment of guestbook from 12 failed.")
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"guestbook", "guestbook"},
		{"team-a.guestbook", "team-a.guestbook"},
		{"guestbook;id", "'guestbook;id'"},
		{"a b", "'a b'"},
		{"it's", `'it'\''s'`},
		{"$HOME", "'$$HOME'"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, shellQuote(tt.in), tt.in)
	}
}
