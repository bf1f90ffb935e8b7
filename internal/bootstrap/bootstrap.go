// Package bootstrap builds the collaborators of a run from the environment configuration.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/porter-dev/argocd-deployer/internal/adapter"
	"github.com/porter-dev/argocd-deployer/internal/envconf"
	"github.com/porter-dev/argocd-deployer/internal/logger"
	"github.com/porter-dev/argocd-deployer/internal/repository"
	"github.com/porter-dev/argocd-deployer/pkg/alerter"
	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/porter-dev/argocd-deployer/pkg/checkpoint"
	"github.com/porter-dev/argocd-deployer/pkg/command"
	"github.com/porter-dev/argocd-deployer/pkg/httpclient"
	"github.com/porter-dev/argocd-deployer/pkg/metadata"
	"github.com/porter-dev/argocd-deployer/pkg/metrics"
	"github.com/porter-dev/argocd-deployer/pkg/redis"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	ctrl "sigs.k8s.io/controller-runtime"
)

// Controller returns the configured controller backend. The log source is nil when the
// backend cannot provide application logs.
func Controller(conf *envconf.ArgoCDConf, runner command.Runner) (argocd.Controller, argocd.LogSource, error) {
	switch conf.Backend {
	case "cli", "":
		client := argocd.NewCLIClient(runner, argocd.CLIConfig{
			Binary:         conf.Binary,
			Server:         conf.Server,
			AuthToken:      conf.AuthToken,
			GRPCWeb:        conf.GRPCWeb,
			Insecure:       conf.Insecure,
			RequestTimeout: conf.RequestTimeout,
		})

		return client, client, nil
	case "kube":
		restConf, err := ctrl.GetConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("could not load kubeconfig: %w", err)
		}

		client, err := argocd.NewKubeClient(restConf, conf.Namespace)
		if err != nil {
			return nil, nil, err
		}

		return client, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown controller backend %q", conf.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Store returns the configured metadata backend and a closer releasing its connections
func Store(ctx context.Context, conf *envconf.MetadataConf, runner command.Runner, l *logger.Logger) (metadata.Store, io.Closer, error) {
	switch conf.Backend {
	case "buildkite", "":
		return metadata.NewBuildkiteStore(runner, conf.BuildkiteAgent), nopCloser{}, nil
	case "redis":
		rc := conf.RedisConf
		client := redis.NewClient(rc.Host, rc.Port, rc.Username, rc.Password, rc.DB, rc.TTL)

		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("could not reach redis at %s:%s: %w", rc.Host, rc.Port, err)
		}

		return client, client, nil
	case "sql":
		db, err := adapter.New(&conf.DBConf)
		if err != nil {
			return nil, nil, fmt.Errorf("could not create database connection: %w", err)
		}

		if err := repository.AutoMigrate(db, false); err != nil {
			return nil, nil, fmt.Errorf("auto migration failed: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}

		return metadata.NewRepositoryStore(repository.NewRepository(db).DeploymentMetadata), sqlDB, nil
	case "memory":
		l.Warn().Caller().Msg("metadata is kept in memory and will not be visible to later steps")
		return metadata.NewMemoryStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown metadata backend %q", conf.Backend)
	}
}

// Notifier fans out to Slack and Sentry when they are configured
func Notifier(conf *envconf.EnvDecoderConf, l *logger.Logger) (*alerter.Alerter, error) {
	notifiers := make([]alerter.Notifier, 0, 2)

	if nc := conf.NotificationConf; nc.SlackWebhookURL != "" {
		client := httpclient.NewClient(nc.SlackWebhookURL, "", nc.SlackTimeout)
		notifiers = append(notifiers, alerter.NewSlackNotifier(client, nc.SlackUsername))
	}

	if conf.SentryDSN != "" {
		sn, err := alerter.NewSentryNotifier(conf.SentryDSN, conf.SentryEnv)
		if err != nil {
			return nil, fmt.Errorf("could not set up sentry: %w", err)
		}

		notifiers = append(notifiers, sn)
	}

	return alerter.NewAlerter(l, notifiers...), nil
}

// Checkpoint returns the manual-decision backend
func Checkpoint(conf *envconf.EnvDecoderConf, runner command.Runner, l *logger.Logger) (checkpoint.Checkpoint, error) {
	switch conf.CheckpointConf.Backend {
	case "buildkite", "":
		return checkpoint.NewBuildkite(runner, conf.MetadataConf.BuildkiteAgent, conf.CheckpointConf.RollbackCommand), nil
	case "none":
		return &checkpoint.Noop{Logger: l}, nil
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", conf.CheckpointConf.Backend)
	}
}

// Pusher is nil when no Pushgateway is configured
func Pusher(conf *envconf.MetricsConf) metrics.Pusher {
	if conf.PushgatewayURL == "" {
		return nil
	}

	return metrics.NewPushgateway(conf.PushgatewayURL, conf.Job)
}

func BuildInfo(conf *envconf.BuildConf) alerter.BuildInfo {
	return alerter.BuildInfo{
		Number:   conf.Number,
		URL:      conf.URL,
		Pipeline: conf.Pipeline,
		Branch:   conf.Branch,
		Commit:   conf.Commit,
		Creator:  conf.Creator,
	}
}
