package main

import (
	"fmt"

	"github.com/porter-dev/argocd-deployer/internal/envconf"
	"github.com/porter-dev/argocd-deployer/internal/logger"
	"github.com/porter-dev/argocd-deployer/pkg/command"
	"github.com/porter-dev/argocd-deployer/pkg/orchestrator"
	"github.com/spf13/cobra"
)

var (
	envConf *envconf.EnvDecoderConf
	l       *logger.Logger

	// runner executes every external binary; replaced in tests
	runner command.Runner = command.NewExecRunner()
)

var rootCmd = &cobra.Command{
	Use:   "argocd-deployer",
	Short: "Deploy and roll back ArgoCD applications from CI",
	Long: `argocd-deployer syncs an ArgoCD application, watches its health and rolls it
back to the last stable revision when the deployment does not become healthy.
Outcomes are recorded as build meta-data so later pipeline steps can act on them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		conf, err := envconf.Decode()
		if err != nil {
			logger.NewErrorConsole(true).Error().Caller().Msgf("could not decode env conf: %v", err)
			return &orchestrator.ConfigError{Problems: []string{fmt.Sprintf("could not decode env conf: %v", err)}}
		}

		envConf = conf
		l = logger.NewConsole(conf.Debug)

		return nil
	},
}

func init() {
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &orchestrator.ConfigError{Problems: []string{err.Error()}}
	})

	rootCmd.AddCommand(deployCmd, rollbackCmd, resolveCmd, historyCmd)
}
