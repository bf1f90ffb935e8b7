package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/porter-dev/argocd-deployer/internal/bootstrap"
	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/porter-dev/argocd-deployer/pkg/orchestrator"
	"github.com/porter-dev/argocd-deployer/pkg/revision"
	"github.com/spf13/cobra"
)

// currentToken asks resolve for the current stable revision
const currentToken = "current"

var inspectApp string

var resolveCmd = &cobra.Command{
	Use:   "resolve [history ID | commit | previous | current]",
	Short: "Print the history ID a revision token resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, closer, err := newResolver(cmd.Context())
		if err != nil {
			return err
		}

		defer closer.Close()

		token := strings.TrimSpace(args[0])

		var id argocd.HistoryID

		switch strings.ToLower(token) {
		case currentToken:
			id, err = resolver.CurrentStable(cmd.Context(), inspectApp)
		case revision.PreviousToken:
			id, err = resolver.PreviousStable(cmd.Context(), inspectApp)
		default:
			id, err = resolver.Resolve(cmd.Context(), inspectApp, token)
		}

		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), id)

		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the deployment history of an application, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, closer, err := newResolver(cmd.Context())
		if err != nil {
			return err
		}

		defer closer.Close()

		entries, err := resolver.History(cmd.Context(), inspectApp)
		if err != nil {
			return err
		}

		return writeHistory(cmd.OutOrStdout(), entries)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{resolveCmd, historyCmd} {
		cmd.Flags().StringVar(&inspectApp, "app", "", "name of the ArgoCD application")
		cmd.MarkFlagRequired("app")
	}
}

// newResolver reads previous_version from the configured store; outside a build
// the buildkite store fails and the resolver falls back to the history
func newResolver(ctx context.Context) (*revision.Resolver, io.Closer, error) {
	controller, _, err := bootstrap.Controller(&envConf.ArgoCDConf, runner)
	if err != nil {
		return nil, nil, &orchestrator.ConfigError{Problems: []string{err.Error()}}
	}

	store, closer, err := bootstrap.Store(ctx, &envConf.MetadataConf, runner, l)
	if err != nil {
		return nil, nil, &orchestrator.ConfigError{Problems: []string{err.Error()}}
	}

	return revision.NewResolver(controller, store), closer, nil
}

func writeHistory(w io.Writer, entries []argocd.HistoryEntry) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tREVISION\tDEPLOYED AT")

	for _, e := range entries {
		deployedAt := "-"

		if !e.DeployedAt.IsZero() {
			deployedAt = e.DeployedAt.Format(time.RFC3339)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, revision.ShortHash(e.Revision), deployedAt)
	}

	return tw.Flush()
}
