package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	mock_argocd "github.com/porter-dev/argocd-deployer/pkg/argocd/mocks"
	"github.com/porter-dev/argocd-deployer/pkg/command/commandtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock_argocd.NewMockLogSource(ctrl)
	source.EXPECT().Logs(gomock.Any(), "guestbook", 100).Return([]string{"starting", "crashed"}, nil)

	dir := filepath.Join(t.TempDir(), "logs")
	c := NewCollector(source, commandtest.NewRunner(), "", dir)

	path, err := c.Collect(context.Background(), "guestbook", "run-1", 100)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "guestbook-run-1.log"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "starting\ncrashed\n", string(data))
}

func TestCollect_SourceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock_argocd.NewMockLogSource(ctrl)
	source.EXPECT().Logs(gomock.Any(), "guestbook", 100).Return(nil, errors.New("forbidden"))

	_, err := NewCollector(source, commandtest.NewRunner(), "", t.TempDir()).Collect(context.Background(), "guestbook", "run-1", 100)
	assert.ErrorContains(t, err, "forbidden")
}

func TestCollect_NoSource(t *testing.T) {
	_, err := NewCollector(nil, commandtest.NewRunner(), "", t.TempDir()).Collect(context.Background(), "guestbook", "run-1", 100)
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	runner := commandtest.NewRunner()
	c := NewCollector(nil, runner, "/usr/bin/buildkite-agent", t.TempDir())

	require.NoError(t, c.Upload(context.Background(), "/tmp/guestbook-run-1.log"))
	assert.Len(t, runner.CallsMatching("/usr/bin/buildkite-agent artifact upload /tmp/guestbook-run-1.log"), 1)
}
