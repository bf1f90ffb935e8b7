package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/porter-dev/argocd-deployer/pkg/orchestrator"
)

// version is set during build with -ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd.Version = version
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(orchestrator.ExitCode(err))
	}
}
