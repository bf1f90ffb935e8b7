package bootstrap_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/porter-dev/argocd-deployer/internal/bootstrap"
	"github.com/porter-dev/argocd-deployer/internal/envconf"
	"github.com/porter-dev/argocd-deployer/internal/logger"
	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/porter-dev/argocd-deployer/pkg/checkpoint"
	"github.com/porter-dev/argocd-deployer/pkg/command/commandtest"
	"github.com/porter-dev/argocd-deployer/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController(t *testing.T) {
	controller, logs, err := bootstrap.Controller(&envconf.ArgoCDConf{Backend: "cli", Binary: "argocd"}, commandtest.NewRunner())
	require.NoError(t, err)

	assert.IsType(t, &argocd.CLIClient{}, controller)
	assert.NotNil(t, logs)

	_, _, err = bootstrap.Controller(&envconf.ArgoCDConf{Backend: "grpc"}, commandtest.NewRunner())
	assert.EqualError(t, err, `unknown controller backend "grpc"`)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	l := logger.NewNop()

	tests := []struct {
		name     string
		conf     envconf.MetadataConf
		wantType metadata.Store
	}{
		{"buildkite", envconf.MetadataConf{Backend: "buildkite"}, &metadata.BuildkiteStore{}},
		{"default", envconf.MetadataConf{}, &metadata.BuildkiteStore{}},
		{"memory", envconf.MetadataConf{Backend: "memory"}, &metadata.MemoryStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closer, err := bootstrap.Store(ctx, &tt.conf, commandtest.NewRunner(), l)
			require.NoError(t, err)

			assert.IsType(t, tt.wantType, store)
			assert.NoError(t, closer.Close())
		})
	}

	_, _, err := bootstrap.Store(ctx, &envconf.MetadataConf{Backend: "etcd"}, commandtest.NewRunner(), l)
	assert.EqualError(t, err, `unknown metadata backend "etcd"`)
}

func TestStore_SQLite(t *testing.T) {
	ctx := context.Background()

	conf := &envconf.MetadataConf{
		Backend: "sql",
		DBConf: envconf.DBConf{
			SQLLite:     true,
			SQLLitePath: filepath.Join(t.TempDir(), "metadata.db"),
		},
	}

	store, closer, err := bootstrap.Store(ctx, conf, commandtest.NewRunner(), logger.NewNop())
	require.NoError(t, err)

	defer closer.Close()

	require.NoError(t, store.Set(ctx, "argocd:guestbook:current_version", "bbbbbbb"))

	v, ok, err := store.Get(ctx, "argocd:guestbook:current_version")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bbbbbbb", v)
}

func TestCheckpoint(t *testing.T) {
	l := logger.NewNop()

	cp, err := bootstrap.Checkpoint(&envconf.EnvDecoderConf{CheckpointConf: envconf.CheckpointConf{Backend: "none"}}, commandtest.NewRunner(), l)
	require.NoError(t, err)
	assert.IsType(t, &checkpoint.Noop{}, cp)

	cp, err = bootstrap.Checkpoint(&envconf.EnvDecoderConf{CheckpointConf: envconf.CheckpointConf{Backend: "buildkite"}}, commandtest.NewRunner(), l)
	require.NoError(t, err)
	assert.IsType(t, &checkpoint.Buildkite{}, cp)

	_, err = bootstrap.Checkpoint(&envconf.EnvDecoderConf{CheckpointConf: envconf.CheckpointConf{Backend: "jira"}}, commandtest.NewRunner(), l)
	assert.EqualError(t, err, `unknown checkpoint backend "jira"`)
}

func TestNotifier(t *testing.T) {
	l := logger.NewNop()

	a, err := bootstrap.Notifier(&envconf.EnvDecoderConf{}, l)
	require.NoError(t, err)
	assert.Empty(t, a.Notifiers)

	a, err = bootstrap.Notifier(&envconf.EnvDecoderConf{
		NotificationConf: envconf.NotificationConf{SlackWebhookURL: "https://hooks.slack.com/services/T/B/X", SlackUsername: "deployer"},
	}, l)
	require.NoError(t, err)
	assert.Len(t, a.Notifiers, 1)
}

func TestPusher(t *testing.T) {
	assert.Nil(t, bootstrap.Pusher(&envconf.MetricsConf{}))
	assert.NotNil(t, bootstrap.Pusher(&envconf.MetricsConf{PushgatewayURL: "http://pushgateway:9091"}))
}

func TestBuildInfo(t *testing.T) {
	info := bootstrap.BuildInfo(&envconf.BuildConf{Number: "12", Pipeline: "deploy", Branch: "main"})

	assert.Equal(t, "12", info.Number)
	assert.Equal(t, "deploy", info.Pipeline)
	assert.Equal(t, "main", info.Branch)
	assert.False(t, info.Empty())
}
