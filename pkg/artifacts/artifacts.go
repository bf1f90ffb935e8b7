// Package artifacts gathers controller logs for a failed run and hands them to the CI system.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/porter-dev/argocd-deployer/pkg/command"
)

const uploadTimeout = 2 * time.Minute

// Collector writes application logs to Dir and optionally uploads them as build artifacts
type Collector struct {
	source argocd.LogSource
	runner command.Runner
	agent  string

	Dir string
}

func NewCollector(source argocd.LogSource, runner command.Runner, agentBinary, dir string) *Collector {
	if agentBinary == "" {
		agentBinary = "buildkite-agent"
	}

	if dir == "" {
		dir = os.TempDir()
	}

	return &Collector{
		source: source,
		runner: runner,
		agent:  agentBinary,
		Dir:    dir,
	}
}

// Collect fetches the last lines of the application's logs and returns the file they were written to
func (c *Collector) Collect(ctx context.Context, app, runID string, lines int) (string, error) {
	if c.source == nil {
		return "", fmt.Errorf("controller backend cannot provide logs for %s", app)
	}

	logs, err := c.source.Logs(ctx, app, lines)
	if err != nil {
		return "", fmt.Errorf("could not fetch logs of %s: %w", app, err)
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create artifacts directory: %w", err)
	}

	path := filepath.Join(c.Dir, fmt.Sprintf("%s-%s.log", app, runID))

	content := strings.Join(logs, "\n")
	if len(logs) > 0 {
		content += "\n"
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("could not write logs of %s: %w", app, err)
	}

	return path, nil
}

// Upload attaches the file at path to the current build
func (c *Collector) Upload(ctx context.Context, path string) error {
	_, err := c.runner.Run(ctx, command.Command{
		Name:    c.agent,
		Args:    []string{"artifact", "upload", path},
		Timeout: uploadTimeout,
	})
	if err != nil {
		return fmt.Errorf("could not upload %s: %w", path, err)
	}

	return nil
}
