//go:generate mockgen -source alerter.go -destination mocks/alerter.go

// Package alerter delivers deployment notifications to humans. Delivery is
// best-effort: failures are returned to the caller, which logs and moves on.
package alerter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/porter-dev/argocd-deployer/internal/logger"
)

type Severity string

const (
	SeveritySuccess  Severity = "success"
	SeverityNormal   Severity = "normal"
	SeverityCritical Severity = "critical"
)

// BuildInfo identifies the CI build that triggered the run
type BuildInfo struct {
	Number   string
	URL      string
	Pipeline string
	Branch   string
	Commit   string
	Creator  string
}

// Empty reports whether no build information is available
func (b BuildInfo) Empty() bool {
	return b == BuildInfo{}
}

// Message is one structured notification
type Message struct {
	// Channel overrides the notifier's default destination when set
	Channel  string
	Severity Severity

	App    string
	RunID  string
	Status string
	Result string
	From   string
	To     string

	// Summary is a one-line human description of what happened
	Summary string
	Details []string
	Build   BuildInfo
}

// Title renders the message headline
func (m *Message) Title() string {
	title := fmt.Sprintf("%s: %s", m.App, m.Summary)

	if m.From != "" || m.To != "" {
		title += fmt.Sprintf(" (%s → %s)", orUnknown(m.From), orUnknown(m.To))
	}

	return title
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}

func (m *Message) buildLine() string {
	if m.Build.Empty() {
		return ""
	}

	parts := make([]string, 0, 4)

	if m.Build.Pipeline != "" {
		parts = append(parts, m.Build.Pipeline)
	}

	if m.Build.Number != "" {
		parts = append(parts, "#"+m.Build.Number)
	}

	if m.Build.Branch != "" {
		parts = append(parts, "on "+m.Build.Branch)
	}

	if m.Build.Creator != "" {
		parts = append(parts, "by "+m.Build.Creator)
	}

	line := strings.Join(parts, " ")

	if m.Build.URL != "" {
		line = fmt.Sprintf("<%s|%s>", m.Build.URL, line)
	}

	return line
}

// Notifier delivers a message to one destination
type Notifier interface {
	Notify(ctx context.Context, msg *Message) error
}

// Alerter fans a message out to every configured notifier
type Alerter struct {
	Notifiers []Notifier
	Logger    *logger.Logger
}

func NewAlerter(l *logger.Logger, notifiers ...Notifier) *Alerter {
	return &Alerter{
		Notifiers: notifiers,
		Logger:    l,
	}
}

// Notify attempts every notifier even when an earlier one fails and returns the joined errors
func (a *Alerter) Notify(ctx context.Context, msg *Message) error {
	var errs []error

	for _, n := range a.Notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			a.Logger.Warn().Caller().Err(err).Msgf("notification for %s was not delivered", msg.App)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
