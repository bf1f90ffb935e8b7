package argocd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/porter-dev/argocd-deployer/pkg/command"
)

// commandGrace is added to the process timeout of calls that carry their own --timeout flag,
// so the controller gets a chance to report the timeout itself
const commandGrace = 30 * time.Second

// CLIConfig contains all details for reaching ArgoCD through its CLI
type CLIConfig struct {
	Binary    string
	Server    string
	AuthToken string
	GRPCWeb   bool
	Insecure  bool

	// RequestTimeout bounds read-only calls such as `app get` and `app history`
	RequestTimeout time.Duration
}

// CLIClient implements Controller by invoking the argocd binary
type CLIClient struct {
	runner command.Runner
	conf   CLIConfig
}

// NewCLIClient creates a Controller that shells out to the argocd CLI
func NewCLIClient(runner command.Runner, conf CLIConfig) *CLIClient {
	if conf.Binary == "" {
		conf.Binary = "argocd"
	}

	if conf.RequestTimeout <= 0 {
		conf.RequestTimeout = time.Minute
	}

	return &CLIClient{
		runner: runner,
		conf:   conf,
	}
}

func (c *CLIClient) command(timeout time.Duration, args ...string) command.Command {
	if c.conf.Server != "" {
		args = append(args, "--server", c.conf.Server)
	}

	if c.conf.GRPCWeb {
		args = append(args, "--grpc-web")
	}

	if c.conf.Insecure {
		args = append(args, "--insecure")
	}

	cmd := command.Command{
		Name:    c.conf.Binary,
		Args:    args,
		Timeout: timeout,
	}

	if c.conf.AuthToken != "" {
		cmd.Env = []string{"ARGOCD_AUTH_TOKEN=" + c.conf.AuthToken}
	}

	return cmd
}

func (c *CLIClient) GetApplication(ctx context.Context, app string) (*Application, error) {
	if app == "" {
		return nil, errors.New("must supply application name")
	}

	res, err := c.runner.Run(ctx, c.command(c.conf.RequestTimeout, "app", "get", app, "-o", "json"))
	if err != nil {
		return nil, fmt.Errorf("could not get application %s: %w", app, err)
	}

	return ParseApplication(res.Stdout)
}

func (c *CLIClient) Sync(ctx context.Context, app string, timeout time.Duration) (*OperationResult, error) {
	cmd := c.command(timeout+commandGrace, "app", "sync", app, "--timeout", seconds(timeout))
	res, err := c.runner.Run(ctx, cmd)

	return operationResult("sync", app, res, err)
}

// Rollback will attempt to set a given ArgoCD application to the supplied history entry.
// ArgoCD rejects rollbacks while auto-sync is enabled, which surfaces as ErrAutoSyncEnabled.
func (c *CLIClient) Rollback(ctx context.Context, app string, id HistoryID, timeout time.Duration) (*OperationResult, error) {
	if !id.Known() {
		return &OperationResult{Outcome: OutcomeFailed}, &OperationError{
			Op:      "rollback",
			App:     app,
			Outcome: OutcomeFailed,
			Err:     errors.New("must set a revision to rollback to"),
		}
	}

	cmd := c.command(timeout+commandGrace, "app", "rollback", app, id.String(), "--timeout", seconds(timeout))
	res, err := c.runner.Run(ctx, cmd)

	return operationResult("rollback", app, res, err)
}

func (c *CLIClient) History(ctx context.Context, app string) ([]HistoryEntry, error) {
	res, err := c.runner.Run(ctx, c.command(c.conf.RequestTimeout, "app", "history", app))
	if err != nil {
		return nil, fmt.Errorf("could not list history of application %s: %w", app, err)
	}

	return ParseHistoryTable(string(res.Stdout)), nil
}

func (c *CLIClient) SetAutoSync(ctx context.Context, app string, enabled bool) (*OperationResult, error) {
	policy := "none"

	if enabled {
		policy = "automated"
	}

	res, err := c.runner.Run(ctx, c.command(c.conf.RequestTimeout, "app", "set", app, "--sync-policy", policy))

	return operationResult("set-sync-policy", app, res, err)
}

func (c *CLIClient) WaitForHealth(ctx context.Context, app string, timeout time.Duration) (*OperationResult, error) {
	cmd := c.command(timeout+commandGrace, "app", "wait", app, "--health", "--timeout", seconds(timeout))
	res, err := c.runner.Run(ctx, cmd)

	return operationResult("wait", app, res, err)
}

// Logs returns the last tail lines logged by the application's pods
func (c *CLIClient) Logs(ctx context.Context, app string, tail int) ([]string, error) {
	res, err := c.runner.Run(ctx, c.command(c.conf.RequestTimeout, "app", "logs", app, "--tail", strconv.Itoa(tail)))
	if err != nil {
		return nil, fmt.Errorf("could not fetch logs of application %s: %w", app, err)
	}

	return res.Lines(), nil
}

func operationResult(op, app string, res *command.Result, err error) (*OperationResult, error) {
	out := &OperationResult{
		Outcome: OutcomeSuccess,
		Output:  res.Lines(),
	}

	if err == nil {
		return out, nil
	}

	out.Outcome = OutcomeFailed

	if errors.Is(err, command.ErrTimedOut) || mentionsTimeout(out.Output) {
		out.Outcome = OutcomeTimedOut
	}

	if mentionsAutoSync(out.Output) || strings.Contains(err.Error(), "auto-sync is enabled") {
		err = fmt.Errorf("%w: %v", ErrAutoSyncEnabled, err)
	}

	return out, &OperationError{
		Op:      op,
		App:     app,
		Outcome: out.Outcome,
		Err:     err,
	}
}

func mentionsTimeout(lines []string) bool {
	for _, l := range lines {
		lower := strings.ToLower(l)

		if strings.Contains(lower, "timed out") || strings.Contains(lower, "deadline exceeded") {
			return true
		}
	}

	return false
}

func mentionsAutoSync(lines []string) bool {
	for _, l := range lines {
		if strings.Contains(l, "rollback cannot be initiated when auto-sync is enabled") {
			return true
		}
	}

	return false
}

func seconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}
