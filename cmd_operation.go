package main

import (
	"context"
	"io"
	"strings"

	"github.com/porter-dev/argocd-deployer/internal/bootstrap"
	"github.com/porter-dev/argocd-deployer/internal/envconf"
	"github.com/porter-dev/argocd-deployer/pkg/artifacts"
	"github.com/porter-dev/argocd-deployer/pkg/orchestrator"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Sync an application and roll it back if it does not become healthy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd.Context(), cmd.Flags(), orchestrator.ModeDeploy)
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll an application back to a history ID, a commit or the previous stable revision",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd.Context(), cmd.Flags(), orchestrator.ModeRollback)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{deployCmd, rollbackCmd} {
		addOperationFlags(cmd.Flags())
	}

	rollbackCmd.Flags().String("target-revision", "", "history ID, commit hash or \"previous\"")
}

func addOperationFlags(fs *flag.FlagSet) {
	fs.String("app", "", "name of the ArgoCD application")
	fs.String("rollback-mode", "", "auto or manual")
	fs.Int("timeout", orchestrator.DefaultTimeout, "seconds a sync or rollback may take")
	fs.Int("health-check-interval", orchestrator.DefaultHealthCheckInterval, "seconds between health samples")
	fs.Int("health-check-timeout", orchestrator.DefaultHealthCheckTimeout, "seconds to wait for the application to become healthy")
	fs.Bool("collect-logs", false, "collect application logs when the run fails")
	fs.Bool("upload-artifacts", false, "upload collected logs as build artifacts")
	fs.Int("log-lines", orchestrator.DefaultLogLines, "number of log lines to collect")
	fs.String("slack-channel", "", "channel, user or channel ID to notify instead of the webhook default")
}

// operationOptions starts from the environment and lets explicitly set flags win
func operationOptions(conf *envconf.OperationConf, fs *flag.FlagSet, mode orchestrator.Mode) (orchestrator.Options, error) {
	opts := orchestrator.Options{
		App:                 conf.App,
		Mode:                mode,
		RollbackMode:        orchestrator.RollbackMode(strings.ToLower(conf.RollbackMode)),
		TargetRevision:      conf.TargetRevision,
		Timeout:             conf.Timeout,
		HealthCheckInterval: conf.HealthCheckInterval,
		HealthCheckTimeout:  conf.HealthCheckTimeout,
		CollectLogs:         conf.CollectLogs,
		UploadArtifacts:     conf.UploadArtifacts,
		LogLines:            conf.LogLines,
		SlackChannel:        conf.SlackChannel,
	}

	var err error

	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}

		switch f.Name {
		case "app":
			opts.App, err = fs.GetString(f.Name)
		case "rollback-mode":
			var mode string
			mode, err = fs.GetString(f.Name)
			opts.RollbackMode = orchestrator.RollbackMode(strings.ToLower(mode))
		case "target-revision":
			opts.TargetRevision, err = fs.GetString(f.Name)
		case "timeout":
			opts.Timeout, err = fs.GetInt(f.Name)
		case "health-check-interval":
			opts.HealthCheckInterval, err = fs.GetInt(f.Name)
		case "health-check-timeout":
			opts.HealthCheckTimeout, err = fs.GetInt(f.Name)
		case "collect-logs":
			opts.CollectLogs, err = fs.GetBool(f.Name)
		case "upload-artifacts":
			opts.UploadArtifacts, err = fs.GetBool(f.Name)
		case "log-lines":
			opts.LogLines, err = fs.GetInt(f.Name)
		case "slack-channel":
			opts.SlackChannel, err = fs.GetString(f.Name)
		}
	})

	if err != nil {
		return opts, &orchestrator.ConfigError{Problems: []string{err.Error()}}
	}

	return opts, nil
}

func runOperation(ctx context.Context, fs *flag.FlagSet, mode orchestrator.Mode) error {
	opts, err := operationOptions(&envConf.OperationConf, fs, mode)
	if err != nil {
		return err
	}

	// fail on bad input before any collaborator is contacted
	if err := opts.Validate(); err != nil {
		l.Error().Caller().Err(err).Msg("refusing to run")
		return err
	}

	conf, closer, err := orchestratorConfig(ctx, envConf)
	if err != nil {
		l.Error().Caller().Err(err).Msg("could not set up collaborators")
		return &orchestrator.ConfigError{Problems: []string{err.Error()}}
	}

	defer closer.Close()

	_, err = orchestrator.New(conf).Run(ctx, opts)

	return err
}

func orchestratorConfig(ctx context.Context, conf *envconf.EnvDecoderConf) (orchestrator.Config, io.Closer, error) {
	controller, logSource, err := bootstrap.Controller(&conf.ArgoCDConf, runner)
	if err != nil {
		return orchestrator.Config{}, nil, err
	}

	store, closer, err := bootstrap.Store(ctx, &conf.MetadataConf, runner, l)
	if err != nil {
		return orchestrator.Config{}, nil, err
	}

	notifier, err := bootstrap.Notifier(conf, l)
	if err != nil {
		closer.Close()
		return orchestrator.Config{}, nil, err
	}

	cp, err := bootstrap.Checkpoint(conf, runner, l)
	if err != nil {
		closer.Close()
		return orchestrator.Config{}, nil, err
	}

	res := orchestrator.Config{
		Controller: controller,
		Store:      store,
		Notifier:   notifier,
		Checkpoint: cp,
		Pusher:     bootstrap.Pusher(&conf.MetricsConf),
		Build:      bootstrap.BuildInfo(&conf.BuildConf),
		Logger:     l,
	}

	if logSource != nil {
		res.Collector = artifacts.NewCollector(logSource, runner, conf.MetadataConf.BuildkiteAgent, conf.OperationConf.ArtifactsDir)
	}

	return res, closer, nil
}
