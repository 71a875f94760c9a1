package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/inventory"
)

func searchSnapshot() *inventory.Snapshot {
	resources := []azure.Resource{
		{
			ID:            "/subscriptions/s1/resourceGroups/rg-app/providers/Microsoft.Compute/virtualMachines/vm-alpha",
			Name:          "vm-alpha",
			Type:          "Microsoft.Compute/virtualMachines",
			Location:      "eastus",
			ResourceGroup: "rg-app",
		},
		{
			ID:            "/subscriptions/s1/resourceGroups/rg-data/providers/Microsoft.Storage/storageAccounts/storagebeta",
			Name:          "storagebeta",
			Type:          "Microsoft.Storage/storageAccounts",
			Location:      "westus",
			ResourceGroup: "rg-data",
		},
		{
			ID:            "/subscriptions/s1/resourceGroups/rg-app/providers/Microsoft.Network/virtualNetworks/vnet-gamma",
			Name:          "vnet-gamma",
			Type:          "Microsoft.Network/virtualNetworks",
			Location:      "eastus",
			ResourceGroup: "rg-app",
		},
	}

	return inventory.NewSnapshot(&azure.Subscription{ID: "s1"}, nil, resources)
}

func TestInMemoryMatchesSubstringsCaseInsensitively(t *testing.T) {
	results := InMemory(searchSnapshot(), Options{Query: "ALPHA"})

	require.Len(t, results, 1)
	assert.Equal(t, "vm-alpha", results[0].Name)
	assert.Equal(t, "Compute", results[0].Category)
	assert.Equal(t, "eastus", results[0].Location)
}

func TestInMemoryRequiresAllTerms(t *testing.T) {
	// Both terms match vm-alpha (name + location).
	results := InMemory(searchSnapshot(), Options{Query: "alpha eastus"})
	require.Len(t, results, 1)

	// Terms matching different resources only must not combine.
	results = InMemory(searchSnapshot(), Options{Query: "alpha westus"})
	assert.Empty(t, results)
}

func TestInMemoryFilters(t *testing.T) {
	results := InMemory(searchSnapshot(), Options{Category: "storage"})
	require.Len(t, results, 1)
	assert.Equal(t, "storagebeta", results[0].Name)

	results = InMemory(searchSnapshot(), Options{ResourceGroup: "RG-APP"})
	require.Len(t, results, 2)
}

func TestInMemoryEmptyQueryReturnsEverythingUpToLimit(t *testing.T) {
	results := InMemory(searchSnapshot(), Options{})
	assert.Len(t, results, 3)

	results = InMemory(searchSnapshot(), Options{Limit: 2})
	assert.Len(t, results, 2)
}
