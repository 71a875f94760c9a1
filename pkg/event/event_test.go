package event

import (
	"testing"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/stretchr/testify/assert"
)

func TestNewAssignsStatusByReason(t *testing.T) {
	vm := azure.Resource{
		ID:            "/subscriptions/s1/resourceGroups/app/providers/Microsoft.Compute/virtualMachines/vm-web",
		Name:          "vm-web",
		Type:          "Microsoft.Compute/virtualMachines",
		ResourceGroup: "app",
	}

	cases := []struct {
		reason string
		status string
	}{
		{ReasonCreated, "Normal"},
		{ReasonUpdated, "Warning"},
		{ReasonDeleted, "Danger"},
		{"rebooted", "Warning"},
	}

	for _, tc := range cases {
		t.Run(tc.reason, func(t *testing.T) {
			e := New(vm, "s1", tc.reason)
			assert.Equal(t, tc.status, e.Status)
			assert.Equal(t, "Compute", e.Category)
			assert.Equal(t, "s1", e.Subscription)
		})
	}
}

func TestMessageIncludesTypeGroupAndName(t *testing.T) {
	e := New(azure.Resource{
		Name: "sadata",
		Type: "Microsoft.Storage/storageAccounts",
	}, "", ReasonDeleted)

	msg := e.Message()
	assert.Contains(t, msg, "Microsoft.Storage/storageAccounts")
	assert.Contains(t, msg, "Unknown") // no resource group on the input
	assert.Contains(t, msg, "deleted")
	assert.Contains(t, msg, "sadata")
	assert.NotContains(t, msg, "subscription")
}
