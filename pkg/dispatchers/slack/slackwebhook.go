package slack

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/slack-go/slack"

	config "github.com/azurescope/explorer/config"
	event "github.com/azurescope/explorer/pkg/event"
)

var slackWebhookErrMsg = `
%s

You need to set the slack webhook url for slack webhook notify,
using the scanner config file, or using environment variables:

export SLACK_WEBHOOK_URL=slack_webhook_url

Optionally override the channel, username and emoji:

export SLACK_WEBHOOK_CHANNEL=slack_channel
export SLACK_WEBHOOK_USERNAME=slack_username
export SLACK_WEBHOOK_EMOJI=slack_emoji

`

// SlackWebhook handler implements the Dispatcher interface,
// Notify event to a slack channel through an incoming webhook
type SlackWebhook struct {
	Channel  string
	Username string
	Emoji    string
	Url      string
}

// Init prepares slack webhook configuration
func (s *SlackWebhook) Init(c *config.Config) error {
	channel := c.Handler.SlackWebhook.Channel
	username := c.Handler.SlackWebhook.Username
	emoji := c.Handler.SlackWebhook.Emoji
	url := c.Handler.SlackWebhook.Slackwebhookurl

	if channel == "" {
		channel = os.Getenv("SLACK_WEBHOOK_CHANNEL")
	}

	if username == "" {
		username = os.Getenv("SLACK_WEBHOOK_USERNAME")
	}

	if emoji == "" {
		emoji = os.Getenv("SLACK_WEBHOOK_EMOJI")
	}

	if url == "" {
		url = os.Getenv("SLACK_WEBHOOK_URL")
	}

	s.Channel = channel
	s.Username = username
	s.Emoji = emoji
	s.Url = url

	return checkMissingSlackWebhookVars(s)
}

// Handle handles the notification.
func (s *SlackWebhook) Handle(e event.Event) {
	attachment := slack.Attachment{
		Fields: []slack.AttachmentField{
			{
				Title: "azurescope",
				Value: e.Message(),
			},
		},
		MarkdownIn: []string{"fields"},
	}

	if color, ok := slackColors[e.Status]; ok {
		attachment.Color = color
	}

	msg := &slack.WebhookMessage{
		Channel:     s.Channel,
		Username:    s.Username,
		IconEmoji:   s.Emoji,
		Attachments: []slack.Attachment{attachment},
	}

	if err := slack.PostWebhook(s.Url, msg); err != nil {
		logrus.Printf("%s\n", err)
		return
	}

	logrus.Printf("Message successfully sent to slack webhook (channel %s)", s.Channel)
}

func checkMissingSlackWebhookVars(s *SlackWebhook) error {
	if s.Url == "" {
		return fmt.Errorf(slackWebhookErrMsg, "Missing slack webhook url")
	}

	return nil
}
