package alerter

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 5 * time.Second

// SentryNotifier reports critical messages as Sentry events and ignores the rest
type SentryNotifier struct {
	hub *sentry.Hub
}

func NewSentryNotifier(dsn, environment string) (*SentryNotifier, error) {
	return NewSentryNotifierWithOptions(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
}

func NewSentryNotifierWithOptions(opts sentry.ClientOptions) (*SentryNotifier, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}

	return &SentryNotifier{
		hub: sentry.NewHub(client, sentry.NewScope()),
	}, nil
}

func (s *SentryNotifier) Notify(ctx context.Context, msg *Message) error {
	if msg.Severity != SeverityCritical {
		return nil
	}

	var id *sentry.EventID

	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTag("app", msg.App)
		scope.SetTag("result", msg.Result)
		scope.SetTag("run_id", msg.RunID)
		scope.SetExtra("from", msg.From)
		scope.SetExtra("to", msg.To)
		scope.SetExtra("status", msg.Status)

		if !msg.Build.Empty() {
			scope.SetExtra("build_url", msg.Build.URL)
			scope.SetExtra("build_number", msg.Build.Number)
			scope.SetExtra("commit", msg.Build.Commit)
		}

		id = s.hub.CaptureMessage(msg.Title())
	})

	if id == nil {
		return errors.New("sentry: event was dropped")
	}

	if !s.hub.Flush(sentryFlushTimeout) {
		return errors.New("sentry: timed out flushing events")
	}

	return nil
}
