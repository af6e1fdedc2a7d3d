// Package notify delivers finished report text to Slack. Formatting is
// the report package's job; this layer only posts.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Notifier posts a message to a channel.
type Notifier interface {
	Post(ctx context.Context, text string) error
}

// SlackNotifier posts via the Slack Web API.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

var _ Notifier = (*SlackNotifier)(nil)

func NewSlackNotifier(token, channel string) (*SlackNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("missing Slack token")
	}
	if channel == "" {
		return nil, fmt.Errorf("missing Slack channel")
	}
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
	}, nil
}

func (s *SlackNotifier) Post(ctx context.Context, text string) error {
	_, ts, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("failed to post to Slack: %w", err)
	}
	log.Info().Str("channel", s.channel).Str("ts", ts).Msg("Posted report to Slack")
	return nil
}
