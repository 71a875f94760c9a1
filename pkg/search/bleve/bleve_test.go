package bleve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/inventory"
	"github.com/azurescope/explorer/pkg/search"
)

func indexSnapshot() *inventory.Snapshot {
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

func newTestController(t *testing.T) *Controller {
	t.Helper()

	c, err := NewControllerAt(t.TempDir())
	require.NoError(t, err)

	return c
}

func TestIndexAndSearchRoundTrip(t *testing.T) {
	c := newTestController(t)

	index, err := c.GetOrCreateIndex("sub-1")
	require.NoError(t, err)

	stats, err := NewIndexer(index).IndexSnapshot(context.Background(), indexSnapshot(), IndexOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.DocumentCount)
	assert.EqualValues(t, 1, stats.CategoryCounts["Compute"])

	results, _, err := NewSearcher(index).Search(context.Background(), search.Options{Query: "alpha"}, false)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "vm-alpha", results[0].Name)
	assert.Equal(t, "Microsoft.Compute/virtualMachines", results[0].Type)
	assert.Equal(t, "Compute", results[0].Category)
	assert.Equal(t, "rg-app", results[0].ResourceGroup)
	assert.Equal(t, "eastus", results[0].Location)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestSearchFiltersByCategoryAndGroup(t *testing.T) {
	c := newTestController(t)

	index, err := c.GetOrCreateIndex("sub-1")
	require.NoError(t, err)

	_, err = NewIndexer(index).IndexSnapshot(context.Background(), indexSnapshot(), IndexOptions{})
	require.NoError(t, err)

	searcher := NewSearcher(index)

	results, _, err := searcher.Search(context.Background(), search.Options{Category: "Storage"}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "storagebeta", results[0].Name)

	results, _, err = searcher.Search(context.Background(), search.Options{ResourceGroup: "rg-app"}, false)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchFuzzyMatching(t *testing.T) {
	c := newTestController(t)

	index, err := c.GetOrCreateIndex("sub-1")
	require.NoError(t, err)

	_, err = NewIndexer(index).IndexSnapshot(context.Background(), indexSnapshot(), IndexOptions{})
	require.NoError(t, err)

	searcher := NewSearcher(index)

	// One edit away from "alpha": only the fuzzy search finds it.
	results, _, err := searcher.Search(context.Background(), search.Options{Query: "alphz"}, false)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, _, err = searcher.Search(context.Background(), search.Options{Query: "alphz"}, true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "vm-alpha", results[0].Name)
}

func TestIndexSnapshotCategoryRestriction(t *testing.T) {
	c := newTestController(t)

	index, err := c.GetOrCreateIndex("sub-1")
	require.NoError(t, err)

	stats, err := NewIndexer(index).IndexSnapshot(context.Background(), indexSnapshot(), IndexOptions{
		Categories: []string{"compute"},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.DocumentCount)

	count, err := index.DocCount()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestGetIndexStatusLifecycle(t *testing.T) {
	c := newTestController(t)

	status, err := c.GetIndexStatus("sub-unknown")
	require.NoError(t, err)
	assert.Equal(t, "not_indexed", status.Status)

	index, err := c.GetOrCreateIndex("sub-1")
	require.NoError(t, err)
	_, err = NewIndexer(index).IndexSnapshot(context.Background(), indexSnapshot(), IndexOptions{})
	require.NoError(t, err)

	status, err = c.GetIndexStatus("sub-1")
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)
	require.NotNil(t, status.Stats)
	assert.EqualValues(t, 3, status.Stats.DocumentCount)

	require.NoError(t, c.DeleteIndex("sub-1"))

	status, err = c.GetIndexStatus("sub-1")
	require.NoError(t, err)
	assert.Equal(t, "not_indexed", status.Status)
}

func TestParseDocID(t *testing.T) {
	result := parseDocID("/subscriptions/s1/resourceGroups/rg-app/providers/Microsoft.Compute/virtualMachines/vm-alpha")
	require.NotNil(t, result)
	assert.Equal(t, "vm-alpha", result.Name)
	assert.Equal(t, "rg-app", result.ResourceGroup)
	assert.Equal(t, "Microsoft.Compute/virtualMachines", result.Type)
	assert.Equal(t, "Compute", result.Category)

	// Nested child resources keep the provider root type.
	result = parseDocID("/subscriptions/s1/resourceGroups/rg-data/providers/Microsoft.Sql/servers/srv1/databases/db1")
	require.NotNil(t, result)
	assert.Equal(t, "db1", result.Name)
	assert.Equal(t, "Microsoft.Sql/servers", result.Type)

	assert.Nil(t, parseDocID("/loneword"))
}
