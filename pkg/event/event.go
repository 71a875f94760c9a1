package event

import (
	"fmt"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/inventory"
)

// Reasons a resource event is emitted with.
const (
	ReasonCreated = "created"
	ReasonUpdated = "updated"
	ReasonDeleted = "deleted"
)

// statusByReason maps a change reason to the severity dispatchers use to
// pick colors.
var statusByReason = map[string]string{
	ReasonCreated: "Normal",
	ReasonUpdated: "Warning",
	ReasonDeleted: "Danger",
}

// Event is one observed change to a subscription's inventory.
type Event struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	ResourceGroup string `json:"resourceGroup"`
	Subscription  string `json:"subscription,omitempty"`
	Reason        string `json:"reason"`
	Status        string `json:"status"`
}

// New builds an event for a resource change. Unknown reasons carry the
// Warning status.
func New(r azure.Resource, subscription, reason string) Event {
	status, ok := statusByReason[reason]
	if !ok {
		status = "Warning"
	}

	return Event{
		ID:            r.ID,
		Name:          r.DisplayName(),
		Type:          r.Type,
		Category:      string(inventory.Classify(r.Type)),
		ResourceGroup: r.GroupName(),
		Subscription:  subscription,
		Reason:        reason,
		Status:        status,
	}
}

// Message renders the notification line dispatchers send out.
func (e Event) Message() string {
	msg := fmt.Sprintf("A `%s` in resource group `%s` has been %s:\n`%s`",
		e.Type, e.ResourceGroup, e.Reason, e.Name)

	if e.Subscription != "" {
		msg += fmt.Sprintf("\nsubscription `%s`", e.Subscription)
	}

	return msg
}
