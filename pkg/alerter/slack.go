package alerter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/porter-dev/argocd-deployer/pkg/httpclient"
)

var slackChannelPattern = regexp.MustCompile(`^([#@].*|[A-Z0-9]{9,11})$`)

// IsSlackChannel reports whether s is a channel name, a user handle or a channel ID
func IsSlackChannel(s string) bool {
	return slackChannelPattern.MatchString(s)
}

type SlackMsg struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

type SlackAttachment struct {
	Fallback string   `json:"fallback,omitempty"`
	Text     string   `json:"text"`
	Author   string   `json:"author_name,omitempty"`
	Color    string   `json:"color,omitempty"`
	Markdown []string `json:"mrkdwn_in,omitempty"`
}

func slackColor(s Severity) string {
	switch s {
	case SeveritySuccess:
		return "good"
	case SeverityCritical:
		return "danger"
	default:
		return "warning"
	}
}

// SlackNotifier posts to an incoming webhook
type SlackNotifier struct {
	client   *httpclient.Client
	username string
}

func NewSlackNotifier(client *httpclient.Client, username string) *SlackNotifier {
	return &SlackNotifier{
		client:   client,
		username: username,
	}
}

func (s *SlackNotifier) Notify(ctx context.Context, msg *Message) error {
	if err := s.client.Post(ctx, "", s.render(msg)); err != nil {
		return fmt.Errorf("slack: %w", err)
	}

	return nil
}

func (s *SlackNotifier) render(msg *Message) SlackMsg {
	fields := []string{
		fmt.Sprintf("*Status:* %s", msg.Status),
	}

	if msg.Result != "" {
		fields = append(fields, fmt.Sprintf("*Result:* %s", msg.Result))
	}

	fields = append(fields,
		fmt.Sprintf("*From:* %s", orUnknown(msg.From)),
		fmt.Sprintf("*To:* %s", orUnknown(msg.To)),
	)

	if line := msg.buildLine(); line != "" {
		fields = append(fields, fmt.Sprintf("*Build:* %s", line))
	}

	attachments := []SlackAttachment{
		{
			Fallback: msg.Title(),
			Text:     strings.Join(fields, "\n"),
			Author:   msg.Build.Creator,
			Color:    slackColor(msg.Severity),
			Markdown: []string{"text"},
		},
	}

	if len(msg.Details) > 0 {
		attachments = append(attachments, SlackAttachment{
			Text:     "```" + strings.Join(msg.Details, "\n") + "```",
			Color:    slackColor(msg.Severity),
			Markdown: []string{"text"},
		})
	}

	return SlackMsg{
		Channel:     msg.Channel,
		Username:    s.username,
		Text:        msg.Title(),
		Attachments: attachments,
	}
}
