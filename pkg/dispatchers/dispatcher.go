package dispatchers

import (
	config "github.com/azurescope/explorer/config"
	msteam "github.com/azurescope/explorer/pkg/dispatchers/msteam"
	slack "github.com/azurescope/explorer/pkg/dispatchers/slack"
	smtp "github.com/azurescope/explorer/pkg/dispatchers/smtp"
	webhook "github.com/azurescope/explorer/pkg/dispatchers/webhook"
	event "github.com/azurescope/explorer/pkg/event"
)

type Dispatcher interface {
	Init(c *config.Config) error
	Handle(e event.Event)
}

// Map associates dispatcher names with their corresponding dispatcher implementations for easy lookup
var Map = map[string]interface{}{
	"default":      &Default{},
	"slack":        &slack.Slack{},
	"slackwebhook": &slack.SlackWebhook{},
	"webhook":      &webhook.Webhook{},
	"ms-teams":     &msteam.MSTeams{},
	"smtp":         &smtp.SMTP{},
}

// Default handler is a no-op fallback handler
type Default struct{}

// Init initializes handler configuration
// Do nothing for default handler
func (d *Default) Init(c *config.Config) error {
	return nil
}

// Handle handles an event.
func (d *Default) Handle(e event.Event) {}

// Multi fans one event out to several dispatchers. The server uses it
// to feed WebSocket clients alongside the configured channel.
type Multi struct {
	dispatchers []Dispatcher
}

// NewMulti builds a fan-out over the given dispatchers.
func NewMulti(dispatchers ...Dispatcher) *Multi {
	return &Multi{dispatchers: dispatchers}
}

// Init initializes every wrapped dispatcher, stopping at the first error.
func (m *Multi) Init(c *config.Config) error {
	for _, d := range m.dispatchers {
		if err := d.Init(c); err != nil {
			return err
		}
	}

	return nil
}

// Handle forwards the event to every wrapped dispatcher.
func (m *Multi) Handle(e event.Event) {
	for _, d := range m.dispatchers {
		d.Handle(e)
	}
}
