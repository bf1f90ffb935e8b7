package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/porter-dev/argocd-deployer/pkg/command"
)

const buildkiteTimeout = 30 * time.Second

// BuildkiteStore keeps values in the build's meta-data through buildkite-agent, which makes
// them visible to every later step of the same build
type BuildkiteStore struct {
	runner command.Runner
	agent  string
}

func NewBuildkiteStore(runner command.Runner, agentBinary string) *BuildkiteStore {
	if agentBinary == "" {
		agentBinary = "buildkite-agent"
	}

	return &BuildkiteStore{
		runner: runner,
		agent:  agentBinary,
	}
}

func (s *BuildkiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.runner.Run(ctx, command.Command{
		Name:    s.agent,
		Args:    []string{"meta-data", "set", key, value},
		Timeout: buildkiteTimeout,
	})
	if err != nil {
		return fmt.Errorf("could not set meta-data %s: %w", key, err)
	}

	return nil
}

func (s *BuildkiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	_, err := s.runner.Run(ctx, command.Command{
		Name:    s.agent,
		Args:    []string{"meta-data", "exists", key},
		Timeout: buildkiteTimeout,
	})
	if err != nil {
		var exitErr *command.ExitError

		// exists exits 100 for missing keys
		if errors.As(err, &exitErr) && exitErr.ExitCode == 100 {
			return "", false, nil
		}

		return "", false, fmt.Errorf("could not check meta-data %s: %w", key, err)
	}

	res, err := s.runner.Run(ctx, command.Command{
		Name:    s.agent,
		Args:    []string{"meta-data", "get", key},
		Timeout: buildkiteTimeout,
	})
	if err != nil {
		return "", false, fmt.Errorf("could not get meta-data %s: %w", key, err)
	}

	return strings.TrimSpace(string(res.Stdout)), true, nil
}
