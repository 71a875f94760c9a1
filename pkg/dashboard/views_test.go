package dashboard

import (
	"testing"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/graph"
	"github.com/azurescope/explorer/pkg/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVMID  = "/subscriptions/s1/resourceGroups/app/providers/Microsoft.Compute/virtualMachines/vm-web"
	testNICID = "/subscriptions/s1/resourceGroups/app/providers/Microsoft.Network/networkInterfaces/nic-web"
	testSAID  = "/subscriptions/s1/resourceGroups/data/providers/Microsoft.Storage/storageAccounts/sadata"
)

func testSnapshot() *inventory.Snapshot {
	resources := []azure.Resource{
		{
			ID: testVMID, Name: "vm-web", Type: "Microsoft.Compute/virtualMachines",
			ResourceGroup: "app", Location: "westeurope",
			Properties: map[string]any{
				"networkProfile": map[string]any{
					"networkInterfaces": []any{map[string]any{"id": testNICID}},
				},
			},
		},
		{
			ID: testNICID, Name: "nic-web", Type: "Microsoft.Network/networkInterfaces",
			ResourceGroup: "app", Location: "westeurope",
		},
		{
			ID: testSAID, Name: "sadata", Type: "Microsoft.Storage/storageAccounts",
			ResourceGroup: "data", Location: "northeurope",
		},
		nsgFixture(),
	}

	return inventory.NewSnapshot(&azure.Subscription{ID: "s1", Name: "test"}, nil, resources)
}

func TestDeriveWithoutFilterReproducesFullGraph(t *testing.T) {
	snap := testSnapshot()
	g := graph.Build(snap.Resources)

	views := Derive(snap, g, FilterState{})

	assert.Equal(t, g.Nodes, views.Graph.Nodes)
	assert.Equal(t, g.Edges, views.Graph.Edges)
	assert.Equal(t, len(snap.Resources), views.Counts.Resources)
}

func TestDeriveCategoryTotalsIgnoreFilter(t *testing.T) {
	snap := testSnapshot()
	g := graph.Build(snap.Resources)

	unfiltered := Derive(snap, g, FilterState{})
	filtered := Derive(snap, g, FilterState{}.Toggle(inventory.CategoryStorage))

	// The category cards keep showing the whole landscape while every
	// other view narrows to the selection.
	assert.Equal(t, unfiltered.CategoryTotals, filtered.CategoryTotals)
	assert.Equal(t, 1, filtered.Counts.Resources)
	assert.Equal(t, 1, filtered.Counts.ResourceGroups)
	assert.Equal(t, 1, filtered.Counts.Locations)

	require.Len(t, filtered.TableRows, 1)
	assert.Equal(t, "sadata", filtered.TableRows[0].Name)
}

func TestDeriveProjectionKeepsEdgesOnlyBetweenVisibleNodes(t *testing.T) {
	snap := testSnapshot()
	g := graph.Build(snap.Resources)

	// The VM -> NIC edge crosses the Compute/Network category boundary,
	// so it disappears under either single-category filter.
	require.NotEmpty(t, g.Edges)

	compute := Derive(snap, g, FilterState{}.Toggle(inventory.CategoryCompute))
	require.Len(t, compute.Graph.Nodes, 1)
	assert.Equal(t, testVMID, compute.Graph.Nodes[0].ID)
	assert.Empty(t, compute.Graph.Edges)

	network := Derive(snap, g, FilterState{}.Toggle(inventory.CategoryNetwork))
	assert.Len(t, network.Graph.Nodes, 2)
	assert.Empty(t, network.Graph.Edges)
}

func TestDeriveSecurityGroupsFollowFilter(t *testing.T) {
	snap := testSnapshot()
	g := graph.Build(snap.Resources)

	network := Derive(snap, g, FilterState{}.Toggle(inventory.CategoryNetwork))
	require.Len(t, network.SecurityGroups, 1)
	assert.Equal(t, "nsg-web", network.SecurityGroups[0].Name)
	require.Len(t, network.SecurityGroups[0].Rules, 3)
	assert.Equal(t, 100, network.SecurityGroups[0].Rules[0].Priority)

	storage := Derive(snap, g, FilterState{}.Toggle(inventory.CategoryStorage))
	assert.Empty(t, storage.SecurityGroups)
}

func TestDeriveDoesNotMutateInputs(t *testing.T) {
	snap := testSnapshot()
	g := graph.Build(snap.Resources)

	nodesBefore := len(g.Nodes)
	edgesBefore := len(g.Edges)
	resourcesBefore := len(snap.Resources)

	first := Derive(snap, g, FilterState{}.Toggle(inventory.CategoryNetwork))
	second := Derive(snap, g, FilterState{}.Toggle(inventory.CategoryNetwork))

	assert.Equal(t, first, second)
	assert.Equal(t, nodesBefore, len(g.Nodes))
	assert.Equal(t, edgesBefore, len(g.Edges))
	assert.Equal(t, resourcesBefore, len(snap.Resources))
}

func TestFilterToggleRoundTrip(t *testing.T) {
	f := FilterState{}

	f = f.Toggle(inventory.CategoryCompute)
	c, active := f.Category()
	require.True(t, active)
	assert.Equal(t, inventory.CategoryCompute, c)
	assert.True(t, f.Allows(inventory.CategoryCompute))
	assert.False(t, f.Allows(inventory.CategoryStorage))

	// Selecting another category replaces the first.
	f = f.Toggle(inventory.CategoryStorage)
	c, active = f.Category()
	require.True(t, active)
	assert.Equal(t, inventory.CategoryStorage, c)

	// Re-selecting the active category clears the filter.
	f = f.Toggle(inventory.CategoryStorage)
	_, active = f.Category()
	assert.False(t, active)
	assert.True(t, f.Allows(inventory.CategoryOther))

	assert.Equal(t, FilterState{}, f.Reset())
}
