package inventory

import (
	"testing"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexLookupIsCaseInsensitive(t *testing.T) {
	ix := NewIndex([]azure.Resource{
		{ID: "/subscriptions/S1/resourceGroups/RG/providers/Microsoft.Network/virtualNetworks/VNet-A", Name: "VNet-A"},
	})

	r, ok := ix.Lookup("/SUBSCRIPTIONS/s1/RESOURCEGROUPS/rg/providers/microsoft.network/virtualnetworks/vnet-a")
	require.True(t, ok)
	assert.Equal(t, "VNet-A", r.Name)

	assert.True(t, ix.Has("/subscriptions/S1/resourceGroups/RG/providers/Microsoft.Network/virtualNetworks/VNET-A"))
	assert.False(t, ix.Has("/subscriptions/S1/other"))
}

func TestIndexCollisionLastWriteWins(t *testing.T) {
	ix := NewIndex([]azure.Resource{
		{ID: "/subscriptions/s1/vm", Name: "first"},
		{ID: "/SUBSCRIPTIONS/S1/VM", Name: "second"},
	})

	assert.Equal(t, 1, ix.Len())

	r, ok := ix.Lookup("/subscriptions/s1/vm")
	require.True(t, ok)
	assert.Equal(t, "second", r.Name)
}

func TestIndexPreservesFirstSeenOrder(t *testing.T) {
	ix := NewIndex([]azure.Resource{
		{ID: "b", Name: "b1"},
		{ID: "a", Name: "a1"},
		{ID: "B", Name: "b2"}, // collides with "b", keeps its slot
		{ID: "c", Name: "c1"},
	})

	resources := ix.Resources()
	require.Len(t, resources, 3)
	assert.Equal(t, "b2", resources[0].Name)
	assert.Equal(t, "a1", resources[1].Name)
	assert.Equal(t, "c1", resources[2].Name)
}

func TestIndexEmpty(t *testing.T) {
	ix := NewIndex(nil)
	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Resources())
}
